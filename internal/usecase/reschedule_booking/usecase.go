package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/slot"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
)

// UseCase use case переноса бронирования на другой слот.
// Перенос атомарен: резервация нового слота, освобождение старого,
// перерасчет цены и запись в историю выполняются в одной сериализуемой
// транзакции - бронирование никогда не остается без слота и никогда
// не держит два слота одновременно.
type UseCase struct {
	bookingRepo   BookingRepository
	slotRepo      SlotRepository
	catalogClient CatalogServiceClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	catalogClient CatalogServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		slotRepo:      slotRepo,
		catalogClient: catalogClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider заменяет провайдер времени (для тестирования)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case переноса бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, newSlot=%d, user=%d",
		req.BookingID, req.NewSlotID, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	var response *Response

	// 2. Весь перенос в одной сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Читаем бронирование с блокировкой
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 2.2. Права доступа: клиент или оператор исполнителя
		if err := uc.checkAccess(txCtx, booking, req.UserID); err != nil {
			return err
		}

		// 2.3. Статус допускает перенос
		if !booking.CanBeRescheduled() {
			uc.logger.Warn("RescheduleBooking: booking id=%d cannot be rescheduled, status=%s",
				req.BookingID, booking.Status)
			return fmt.Errorf("%w: status is %s", ErrCannotReschedule, booking.Status)
		}

		// 2.4. Жесткий лимит переносов
		count, err := uc.bookingRepo.CountReschedules(txCtx, req.BookingID)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to count reschedules for booking id=%d: %v",
				req.BookingID, err)
			return fmt.Errorf("%w: failed to count reschedules: %v", ErrInternal, err)
		}
		if count >= domain.MaxReschedules {
			uc.logger.Warn("RescheduleBooking: booking id=%d reached reschedule limit (%d)",
				req.BookingID, domain.MaxReschedules)
			return fmt.Errorf("%w: limit is %d", ErrRescheduleLimitExceeded, domain.MaxReschedules)
		}

		// 2.5. Читаем новый слот
		newSlot, err := uc.slotRepo.GetByID(txCtx, req.NewSlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("RescheduleBooking: slot id=%d not found", req.NewSlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to get slot id=%d: %v", req.NewSlotID, err)
			return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}

		if newSlot.ServiceID != booking.ServiceID {
			uc.logger.Warn("RescheduleBooking: slot id=%d belongs to service=%d, booking is for service=%d",
				req.NewSlotID, newSlot.ServiceID, booking.ServiceID)
			return ErrServiceMismatch
		}

		if booking.SlotID != nil && *booking.SlotID == req.NewSlotID {
			uc.logger.Warn("RescheduleBooking: booking id=%d already holds slot id=%d",
				req.BookingID, req.NewSlotID)
			return ErrSameSlot
		}

		elapsed, err := newSlot.IsElapsed(now)
		if err != nil {
			return fmt.Errorf("%w: failed to check slot time: %v", ErrInternal, err)
		}
		if elapsed {
			uc.logger.Warn("RescheduleBooking: slot id=%d is in the past", req.NewSlotID)
			return ErrSlotInPast
		}

		// 2.6. Сначала занимаем новый слот, потом освобождаем старый:
		// при откате транзакции бронирование остается на старом слоте
		if err := uc.slotRepo.Reserve(txCtx, req.NewSlotID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotFull) {
				uc.logger.Warn("RescheduleBooking: slot id=%d has no free spots", req.NewSlotID)
				return ErrSlotNotAvailable
			}
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to reserve slot id=%d: %v", req.NewSlotID, err)
			return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
		}

		if booking.HoldsSlot() {
			if err := uc.slotRepo.Release(txCtx, *booking.SlotID); err != nil {
				if errors.Is(err, slotRepo.ErrNothingReleased) {
					// Рассинхронизация счетчика и бронирования, перенос не блокируем
					uc.logger.Error("RescheduleBooking: slot id=%d already has zero reservations for booking id=%d",
						*booking.SlotID, req.BookingID)
				} else {
					uc.logger.Error("RescheduleBooking: failed to release slot id=%d: %v", *booking.SlotID, err)
					return fmt.Errorf("%w: failed to release slot: %v", ErrInternal, err)
				}
			}
		}

		// 2.7. Перерасчет цены по категории нового слота
		newBase, newRush, newTotal, err := uc.reprice(txCtx, booking, newSlot)
		if err != nil {
			return err
		}

		priceDifference := newTotal - booking.TotalAmount

		// 2.8. Применяем новое расписание и цену к бронированию
		err = uc.bookingRepo.ApplyReschedule(txCtx, req.BookingID, bookingRepo.RescheduleParams{
			SlotID:      newSlot.ID,
			BookingDate: newSlot.SlotDate,
			StartTime:   newSlot.StartTime,
			EndTime:     newSlot.EndTime,
			Tier:        newSlot.Tier,
			BasePrice:   newBase,
			RushFee:     newRush,
			TotalAmount: newTotal,
			Reason:      req.Reason,
		})
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to apply reschedule for booking id=%d: %v",
				req.BookingID, err)
			return fmt.Errorf("%w: failed to apply reschedule: %v", ErrInternal, err)
		}

		// 2.9. Неизменяемая запись в истории переносов
		_, err = uc.bookingRepo.AppendRescheduleEntry(txCtx, &domain.RescheduleEntry{
			BookingID:       req.BookingID,
			Reason:          req.Reason,
			OldDate:         booking.BookingDate,
			OldStartTime:    booking.StartTime,
			NewDate:         newSlot.SlotDate,
			NewStartTime:    newSlot.StartTime,
			PriceDifference: priceDifference,
		})
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to append history for booking id=%d: %v",
				req.BookingID, err)
			return fmt.Errorf("%w: failed to append history: %v", ErrInternal, err)
		}

		response = &Response{
			BookingID:            req.BookingID,
			BookingDate:          newSlot.SlotDate,
			StartTime:            newSlot.StartTime,
			EndTime:              newSlot.EndTime,
			Tier:                 string(newSlot.Tier),
			BasePrice:            newBase,
			RushFee:              newRush,
			Discount:             booking.Discount,
			TotalAmount:          newTotal,
			PriceDifference:      priceDifference,
			RemainingReschedules: domain.MaxReschedules - count - 1,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: booking id=%d moved to slot id=%d, price difference=%.2f",
		req.BookingID, req.NewSlotID, response.PriceDifference)

	return response, nil
}

// GetHistory возвращает историю переносов бронирования.
// Доступно клиенту бронирования и операторам исполнителя.
func (uc *UseCase) GetHistory(ctx context.Context, bookingID, userID int64) (*HistoryResponse, error) {
	uc.logger.Info("GetRescheduleHistory: booking=%d, user=%d", bookingID, userID)

	booking, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("GetRescheduleHistory: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("GetRescheduleHistory: failed to get booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if err := uc.checkAccess(ctx, booking, userID); err != nil {
		return nil, err
	}

	entries, err := uc.bookingRepo.GetRescheduleHistory(ctx, bookingID)
	if err != nil {
		uc.logger.Error("GetRescheduleHistory: failed to get history for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: failed to get history: %v", ErrInternal, err)
	}

	response := &HistoryResponse{
		BookingID: bookingID,
		Entries:   make([]HistoryEntry, 0, len(entries)),
	}
	for _, e := range entries {
		response.Entries = append(response.Entries, HistoryEntry{
			Reason:          e.Reason,
			OldDate:         e.OldDate,
			OldStartTime:    e.OldStartTime,
			NewDate:         e.NewDate,
			NewStartTime:    e.NewStartTime,
			PriceDifference: e.PriceDifference,
			CreatedAt:       e.CreatedAt,
		})
	}

	return response, nil
}

// reprice пересчитывает цену бронирования по категории нового слота.
// Скидка сохраняется как есть. При недоступности каталога базовая цена
// берется из денормализованных данных бронирования.
func (uc *UseCase) reprice(ctx context.Context, booking *domain.Booking, newSlot *domain.BookingSlot) (base, rush, total float64, err error) {
	catalogBase := booking.BasePrice

	service, err := uc.catalogClient.GetServiceWithGracefulDegradation(ctx, booking.ServiceID)
	switch {
	case err == nil:
		catalogBase = service.BasePrice
	case errors.Is(err, catalogClient.ErrServiceDegraded):
		uc.logger.Warn("RescheduleBooking: catalog degraded, using denormalized base price %.2f for booking id=%d",
			catalogBase, booking.ID)
	case errors.Is(err, catalogClient.ErrServiceNotFound):
		// Услугу могли снять с каталога после бронирования, перенос
		// существующего бронирования это не блокирует
		uc.logger.Warn("RescheduleBooking: service id=%d no longer in catalog, using denormalized base price",
			booking.ServiceID)
	default:
		return 0, 0, 0, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	base = newSlot.EffectiveBasePrice(catalogBase)
	rush = domain.CalculateRushFee(base, newSlot.Tier)
	total = domain.CalculateTotal(base, rush, booking.Discount)
	return base, rush, total, nil
}

// checkAccess проверяет, что пользователь - клиент бронирования
// или оператор исполнителя
func (uc *UseCase) checkAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.CustomerID == userID {
		return nil
	}

	provider, err := uc.catalogClient.GetProvider(ctx, booking.ProviderID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			uc.logger.Warn("RescheduleBooking: provider id=%d not found", booking.ProviderID)
			return ErrAccessDenied
		}
		uc.logger.Error("RescheduleBooking: failed to get provider id=%d: %v", booking.ProviderID, err)
		return fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	if !provider.IsOperator(userID) {
		uc.logger.Warn("RescheduleBooking: user=%d has no access to booking id=%d", userID, booking.ID)
		return ErrAccessDenied
	}

	return nil
}

// validateRequest проверяет входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingId must be positive", ErrInvalidInput)
	}
	if req.NewSlotID <= 0 {
		return fmt.Errorf("%w: newSlotId must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}
	return nil
}
