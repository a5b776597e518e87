package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/availability"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
)

// UseCase use case получения доступных слотов услуги на дату.
// Генерация ленивая: слоты материализуются в БД при первом запросе на дату
// и идемпотентны по натуральному ключу (service_id, slot_date, start_time).
type UseCase struct {
	slotRepo         SlotRepository
	availabilityRepo AvailabilityRepository
	catalogClient    CatalogServiceClient
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	availabilityRepo AvailabilityRepository,
	catalogClient CatalogServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:         slotRepo,
		availabilityRepo: availabilityRepo,
		catalogClient:    catalogClient,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// WithTimeProvider заменяет провайдер времени (для тестирования)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: user=%d, service=%d, date=%s, browseOnly=%v",
		req.UserID, req.ServiceID, req.Date.Format(domain.DateFormat), req.BrowseOnly)

	// 1. Валидация входных данных
	now := uc.timeProvider.Now()
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу из каталога
	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.IsActive {
		uc.logger.Warn("GetAvailableSlots: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceInactive
	}

	// 3. Слоты-кандидаты по расписанию на день недели
	candidates, err := uc.candidatesForDate(ctx, service, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to build candidates: %v", err)
		return nil, err
	}

	if len(candidates) == 0 {
		uc.logger.Info("GetAvailableSlots: no schedule for service=%d on %s",
			req.ServiceID, req.Date.Format(domain.DateFormat))
		return &Response{
			Date:       req.Date,
			ServiceID:  req.ServiceID,
			ProviderID: service.ProviderID,
			Slots:      []Slot{},
		}, nil
	}

	// 4. Материализуем недостающие слоты. Существующие слоты не трогаются:
	// повторная генерация не сбрасывает счетчики резерваций
	if !req.BrowseOnly {
		for _, candidate := range candidates {
			if err := uc.slotRepo.CreateIfAbsent(ctx, candidate); err != nil {
				uc.logger.Error("GetAvailableSlots: failed to create slot %s: %v", candidate.StartTime, err)
				return nil, fmt.Errorf("%w: failed to create slot: %v", ErrInternal, err)
			}
		}
	}

	// 5. Читаем фактическое состояние слотов из БД
	stored, err := uc.slotRepo.GetByServiceAndDate(ctx, req.ServiceID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get stored slots: %v", err)
		return nil, fmt.Errorf("%w: failed to get stored slots: %v", ErrInternal, err)
	}

	// 6. Собираем ответ: материализованные слоты поверх кандидатов
	slots, err := uc.mergeSlots(candidates, stored, service.BasePrice, req, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to merge slots: %v", err)
		return nil, fmt.Errorf("%w: failed to merge slots: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableSlots: %d available slots for service=%d, date=%s",
		len(slots), req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:       req.Date,
		ServiceID:  req.ServiceID,
		ProviderID: service.ProviderID,
		Slots:      slots,
	}, nil
}

// MaterializeRange материализует слоты услуги на диапазон дат [from, to].
// Повторная материализация идемпотентна: существующие слоты и их счетчики
// не трогаются. Используется подбором вариантов переноса, которому нужны
// материализованные слоты на весь горизонт.
func (uc *UseCase) MaterializeRange(ctx context.Context, serviceID int64, from, to time.Time) error {
	service, err := uc.catalogClient.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			return ErrServiceNotFound
		}
		return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.IsActive {
		return ErrServiceInactive
	}

	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		candidates, err := uc.candidatesForDate(ctx, service, date)
		if err != nil {
			return err
		}

		for _, candidate := range candidates {
			if err := uc.slotRepo.CreateIfAbsent(ctx, candidate); err != nil {
				return fmt.Errorf("%w: failed to create slot: %v", ErrInternal, err)
			}
		}
	}

	return nil
}

// candidatesForDate строит слоты-кандидаты услуги на дату.
// Окна услуги на день недели полностью замещают рабочее окно исполнителя.
func (uc *UseCase) candidatesForDate(ctx context.Context, service *catalogClient.Service, date time.Time) ([]*domain.BookingSlot, error) {
	weekday := int(date.Weekday())

	serviceWindows, err := uc.availabilityRepo.GetServiceWindows(ctx, service.ID, weekday)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get service windows: %v", ErrInternal, err)
	}

	var providerWindow *domain.ProviderAvailability
	if len(serviceWindows) == 0 {
		providerWindow, err = uc.availabilityRepo.GetActiveWindow(ctx, service.ProviderID, weekday)
		if err != nil && !errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			return nil, fmt.Errorf("%w: failed to get provider window: %v", ErrInternal, err)
		}
	}

	candidates, err := buildCandidates(serviceWindows, providerWindow, serviceInfo{
		ID:         service.ID,
		ProviderID: service.ProviderID,
	}, date)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build candidates: %v", ErrInternal, err)
	}

	return candidates, nil
}

// mergeSlots собирает доступные слоты: для материализованных берется состояние
// из БД (счетчики, доступность), кандидаты без записи в БД попадают в ответ
// только в browse-режиме. Прошедшие и заполненные слоты отбрасываются.
func (uc *UseCase) mergeSlots(
	candidates []*domain.BookingSlot,
	stored []*domain.BookingSlot,
	catalogBasePrice float64,
	req *Request,
	now time.Time,
) ([]Slot, error) {
	storedByStart := make(map[string]*domain.BookingSlot, len(stored))
	for _, s := range stored {
		storedByStart[s.StartTime.String()] = s
	}

	slots := make([]Slot, 0, len(candidates))
	for _, candidate := range candidates {
		slot := candidate
		var id *int64

		if persisted, ok := storedByStart[candidate.StartTime.String()]; ok {
			slot = persisted
			id = &persisted.ID
		} else if !req.BrowseOnly {
			// Слот только что материализован, но не вернулся из выборки -
			// конкурентное удаление, пропускаем
			continue
		}

		if !slot.HasCapacity() {
			continue
		}

		elapsed, err := slot.IsElapsed(now)
		if err != nil {
			return nil, err
		}
		if elapsed {
			continue
		}

		basePrice := slot.EffectiveBasePrice(catalogBasePrice)
		rushFee := domain.CalculateRushFee(basePrice, slot.Tier)

		slots = append(slots, Slot{
			ID:             id,
			StartTime:      slot.StartTime,
			EndTime:        slot.EndTime,
			Tier:           string(slot.Tier),
			AvailableSpots: slot.MaxReservations - slot.CurrentReservations,
			TotalSpots:     slot.MaxReservations,
			BasePrice:      basePrice,
			RushFee:        rushFee,
			TotalPrice:     domain.CalculateTotal(basePrice, rushFee, 0),
		})
	}

	return slots, nil
}
