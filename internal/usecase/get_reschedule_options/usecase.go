package get_reschedule_options

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// Request модель запроса вариантов переноса
type Request struct {
	UserID    int64 // ID пользователя
	BookingID int64 // ID бронирования
}

// Option вариант переноса: материализованный слот с разницей в цене
type Option struct {
	SlotID int64

	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString

	Tier string

	AvailableSpots int
	TotalSpots     int

	TotalAmount float64

	// Подписанная разница с текущей стоимостью бронирования
	PriceDifference float64
}

// Response модель ответа с вариантами переноса
type Response struct {
	BookingID            int64
	RemainingReschedules int
	Options              []Option
}

// UseCase use case подбора вариантов переноса бронирования.
// Материализует слоты той же услуги на весь горизонт подбора и возвращает
// их с предрассчитанной разницей в цене.
type UseCase struct {
	bookingRepo   BookingRepository
	slotRepo      SlotRepository
	slotGenerator SlotGenerator
	catalogClient CatalogServiceClient
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	slotGenerator SlotGenerator,
	catalogClient CatalogServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		slotRepo:      slotRepo,
		slotGenerator: slotGenerator,
		catalogClient: catalogClient,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider заменяет провайдер времени (для тестирования)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case подбора вариантов переноса
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetRescheduleOptions: booking=%d, user=%d", req.BookingID, req.UserID)

	if req.UserID <= 0 || req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: userId and bookingId must be positive", ErrInvalidInput)
	}

	// 1. Бронирование и права доступа
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("GetRescheduleOptions: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("GetRescheduleOptions: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if err := uc.checkAccess(ctx, booking, req.UserID); err != nil {
		return nil, err
	}

	// 2. Перенос вообще возможен?
	if !booking.CanBeRescheduled() {
		uc.logger.Warn("GetRescheduleOptions: booking id=%d cannot be rescheduled, status=%s",
			req.BookingID, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrCannotReschedule, booking.Status)
	}

	count, err := uc.bookingRepo.CountReschedules(ctx, req.BookingID)
	if err != nil {
		uc.logger.Error("GetRescheduleOptions: failed to count reschedules for booking id=%d: %v",
			req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to count reschedules: %v", ErrInternal, err)
	}
	if count >= domain.MaxReschedules {
		uc.logger.Warn("GetRescheduleOptions: booking id=%d reached reschedule limit", req.BookingID)
		return nil, fmt.Errorf("%w: limit is %d", ErrRescheduleLimitExceeded, domain.MaxReschedules)
	}

	// 3. Базовая цена для расчета вариантов
	catalogBase := booking.BasePrice
	service, err := uc.catalogClient.GetServiceWithGracefulDegradation(ctx, booking.ServiceID)
	switch {
	case err == nil:
		catalogBase = service.BasePrice
	case errors.Is(err, catalogClient.ErrServiceDegraded), errors.Is(err, catalogClient.ErrServiceNotFound):
		uc.logger.Warn("GetRescheduleOptions: using denormalized base price %.2f for booking id=%d",
			catalogBase, req.BookingID)
	default:
		uc.logger.Error("GetRescheduleOptions: failed to get service id=%d: %v", booking.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Материализуем слоты услуги на горизонт подбора и читаем их состояние.
	// Недоступность каталога подбор не блокирует: варианты строятся
	// по уже материализованным слотам
	now := uc.timeProvider.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, domain.RescheduleOptionsDays)

	if err := uc.slotGenerator.MaterializeRange(ctx, booking.ServiceID, from, to); err != nil {
		uc.logger.Warn("GetRescheduleOptions: failed to materialize slots for service id=%d: %v",
			booking.ServiceID, err)
	}

	slots, err := uc.slotRepo.GetByServiceAndDateRange(ctx, booking.ServiceID, from, to)
	if err != nil {
		uc.logger.Error("GetRescheduleOptions: failed to get slots for service id=%d: %v",
			booking.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get slots: %v", ErrInternal, err)
	}

	// 5. Фильтруем и считаем разницу в цене
	options := make([]Option, 0, len(slots))
	for _, slot := range slots {
		if booking.SlotID != nil && slot.ID == *booking.SlotID {
			continue
		}
		if !slot.HasCapacity() {
			continue
		}

		elapsed, err := slot.IsElapsed(now)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to check slot time: %v", ErrInternal, err)
		}
		if elapsed {
			continue
		}

		base := slot.EffectiveBasePrice(catalogBase)
		rush := domain.CalculateRushFee(base, slot.Tier)
		total := domain.CalculateTotal(base, rush, booking.Discount)

		options = append(options, Option{
			SlotID:          slot.ID,
			Date:            slot.SlotDate,
			StartTime:       slot.StartTime,
			EndTime:         slot.EndTime,
			Tier:            string(slot.Tier),
			AvailableSpots:  slot.MaxReservations - slot.CurrentReservations,
			TotalSpots:      slot.MaxReservations,
			TotalAmount:     total,
			PriceDifference: total - booking.TotalAmount,
		})
	}

	uc.logger.Info("GetRescheduleOptions: %d options for booking id=%d", len(options), req.BookingID)

	return &Response{
		BookingID:            req.BookingID,
		RemainingReschedules: domain.MaxReschedules - count,
		Options:              options,
	}, nil
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
			return ErrAccessDenied
		}
		uc.logger.Error("GetRescheduleOptions: failed to get provider id=%d: %v", booking.ProviderID, err)
		return fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	if !provider.IsOperator(userID) {
		uc.logger.Warn("GetRescheduleOptions: user=%d has no access to booking id=%d", userID, booking.ID)
		return ErrAccessDenied
	}

	return nil
}
