package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// buildCandidates генерирует слоты-кандидаты на дату.
// Фиксированные окна услуги полностью замещают рабочие окна исполнителя:
// если на день недели есть хотя бы одно окно услуги, рабочее окно не читается.
func buildCandidates(
	serviceWindows []*domain.ServiceTimeSlot,
	providerWindow *domain.ProviderAvailability,
	service serviceInfo,
	date time.Time,
) ([]*domain.BookingSlot, error) {
	if len(serviceWindows) > 0 {
		return candidatesFromServiceWindows(serviceWindows, service, date)
	}

	if providerWindow == nil {
		return []*domain.BookingSlot{}, nil
	}

	return candidatesFromProviderWindow(providerWindow, service, date)
}

// serviceInfo данные услуги, нужные для построения слота
type serviceInfo struct {
	ID         int64
	ProviderID int64
}

// candidatesFromServiceWindows генерирует слоты из фиксированных окон услуги.
// Каждое окно порождает ровно один слот на всю свою длительность с емкостью
// окна, без часовой нарезки. Peak-окна несут собственную цену и не
// категоризируются.
func candidatesFromServiceWindows(windows []*domain.ServiceTimeSlot, service serviceInfo, date time.Time) ([]*domain.BookingSlot, error) {
	candidates := make([]*domain.BookingSlot, 0, len(windows))

	for _, w := range windows {
		slot := &domain.BookingSlot{
			ServiceID:         service.ID,
			ProviderID:        service.ProviderID,
			SlotDate:          date,
			StartTime:         w.StartTime,
			EndTime:           w.EndTime,
			IsAvailable:       true,
			MaxReservations:   w.MaxBookings,
			BasePriceOverride: w.PriceOverride,
		}

		if w.IsPeak {
			slot.Tier = domain.TierNormal
			slot.RushFeePercent = 0
		} else {
			tier, err := domain.Categorize(date, w.StartTime)
			if err != nil {
				return nil, err
			}
			slot.Tier = tier
			slot.RushFeePercent = tier.RushFeePercent()
		}

		candidates = append(candidates, slot)
	}

	return candidates, nil
}

// candidatesFromProviderWindow генерирует слоты из рабочего окна исполнителя,
// пропуская слоты, пересекающиеся с перерывом
func candidatesFromProviderWindow(w *domain.ProviderAvailability, service serviceInfo, date time.Time) ([]*domain.BookingSlot, error) {
	starts, err := walkWindow(w.StartTime, w.EndTime, domain.DefaultSlotDurationMinutes)
	if err != nil {
		return nil, err
	}

	candidates := make([]*domain.BookingSlot, 0, len(starts))
	for _, start := range starts {
		end, err := start.AddMinutes(domain.DefaultSlotDurationMinutes)
		if err != nil {
			return nil, err
		}

		if w.HasBreak() && overlapsBreak(start, end, *w.BreakStart, *w.BreakEnd) {
			continue
		}

		tier, err := domain.Categorize(date, start)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, &domain.BookingSlot{
			ServiceID:       service.ID,
			ProviderID:      service.ProviderID,
			SlotDate:        date,
			StartTime:       start,
			EndTime:         end,
			IsAvailable:     true,
			MaxReservations: domain.DefaultMaxReservations,
			Tier:            tier,
			RushFeePercent:  tier.RushFeePercent(),
		})
	}

	return candidates, nil
}

// walkWindow возвращает времена начала слотов с фиксированным шагом.
// Слот входит в результат, только если целиком помещается в окно.
func walkWindow(open, close types.TimeString, stepMinutes int) ([]types.TimeString, error) {
	starts := make([]types.TimeString, 0)
	current := open

	for current.IsBefore(close) {
		end, err := current.AddMinutes(stepMinutes)
		if err != nil {
			return nil, err
		}
		// AddMinutes нормализует переход через полночь, окно за полночь не продолжаем
		if end.IsAfter(close) || !end.IsAfter(current) {
			break
		}

		starts = append(starts, current)
		current = end
	}

	return starts, nil
}

// overlapsBreak проверяет пересечение слота [start, end) с перерывом [breakStart, breakEnd)
func overlapsBreak(start, end, breakStart, breakEnd types.TimeString) bool {
	return start.IsBefore(breakEnd) && end.IsAfter(breakStart)
}
