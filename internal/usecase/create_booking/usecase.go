package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	slotRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/slot"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
)

// UseCase use case создания бронирования.
// Резервация места в слоте и создание записи бронирования выполняются
// в одной сериализуемой транзакции: при конкурентном бронировании
// последнего места проигравший запрос получает ErrSlotNotAvailable,
// а счетчик резерваций никогда не превышает вместимость слота.
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

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, service=%d, slot=%d",
		req.UserID, req.ServiceID, req.SlotID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем услугу из каталога
	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceInactive
	}

	var result *domain.Booking

	// 3. Резервация и создание бронирования в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Читаем слот: из него берутся дата, время, категория и цена
		slot, err := uc.slotRepo.GetByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("CreateBooking: slot id=%d not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("CreateBooking: failed to get slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}

		if slot.ServiceID != req.ServiceID {
			uc.logger.Warn("CreateBooking: slot id=%d belongs to service=%d, not service=%d",
				req.SlotID, slot.ServiceID, req.ServiceID)
			return ErrServiceMismatch
		}

		// 3.2. Прошедшие слоты не бронируются
		elapsed, err := slot.IsElapsed(now)
		if err != nil {
			return fmt.Errorf("%w: failed to check slot time: %v", ErrInternal, err)
		}
		if elapsed {
			uc.logger.Warn("CreateBooking: slot id=%d is in the past", req.SlotID)
			return ErrSlotInPast
		}

		// 3.3. Атомарно занимаем место. Условный UPDATE сам проверяет
		// вместимость, поэтому счетчик не может уйти за максимум
		if err := uc.slotRepo.Reserve(txCtx, req.SlotID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotFull) {
				uc.logger.Warn("CreateBooking: slot id=%d has no free spots", req.SlotID)
				return ErrSlotNotAvailable
			}
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			uc.logger.Error("CreateBooking: failed to reserve slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
		}

		// 3.4. Цена фиксируется на момент бронирования
		basePrice := slot.EffectiveBasePrice(service.BasePrice)
		rushFee := domain.CalculateRushFee(basePrice, slot.Tier)
		total := domain.CalculateTotal(basePrice, rushFee, 0)

		booking := &domain.Booking{
			CustomerID: req.UserID,
			ServiceID:  req.ServiceID,
			ProviderID: slot.ProviderID,
			SlotID:     &slot.ID,

			BookingDate: slot.SlotDate,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,

			AddressLine: req.AddressLine,
			City:        req.City,
			PostalCode:  req.PostalCode,

			Status: domain.StatusPending,
			Step:   domain.StepCreated,

			Tier:        slot.Tier,
			BasePrice:   basePrice,
			RushFee:     rushFee,
			Discount:    0,
			TotalAmount: total,

			// Денормализация данных услуги для истории
			ServiceName: service.Name,

			Notes: req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, total=%.2f (base=%.2f, rush=%.2f)",
		result.ID, result.TotalAmount, result.BasePrice, result.RushFee)

	return &Response{
		ID:         result.ID,
		CustomerID: result.CustomerID,
		ServiceID:  result.ServiceID,
		ProviderID: result.ProviderID,
		SlotID:     result.SlotID,

		BookingDate: result.BookingDate,
		StartTime:   result.StartTime,
		EndTime:     result.EndTime,

		AddressLine: result.AddressLine,
		City:        result.City,
		PostalCode:  result.PostalCode,

		Status: string(result.Status),
		Step:   string(result.Step),

		Tier:        string(result.Tier),
		BasePrice:   result.BasePrice,
		RushFee:     result.RushFee,
		Discount:    result.Discount,
		TotalAmount: result.TotalAmount,

		ServiceName: result.ServiceName,
		Notes:       result.Notes,

		CreatedAt: result.CreatedAt,
		UpdatedAt: result.UpdatedAt,
	}, nil
}
