package deliveries

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	deliveryRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/delivery"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/deliveries/models"
)

// Суммы сравниваются с точностью до копейки, чтобы не ловить
// ложные расхождения на двоичном представлении float64
const amountEpsilon = 0.005

// Service сервис двухфазного подтверждения выполнения услуги.
// Фаза 1: исполнитель отмечает услугу выполненной (MarkDelivered).
// Фаза 2: клиент подтверждает выполнение (ConfirmCompletion) - это
// единственный путь перевода бронирования в completed.
type Service struct {
	bookingRepo   BookingRepository
	deliveryRepo  DeliveryRepository
	catalogClient CatalogServiceClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	logger        Logger
}

// NewService создает новый экземпляр сервиса подтверждения выполнения
func NewService(
	bookingRepo BookingRepository,
	deliveryRepo DeliveryRepository,
	catalogClient CatalogServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:   bookingRepo,
		deliveryRepo:  deliveryRepo,
		catalogClient: catalogClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider заменяет провайдер времени (для тестирования)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// MarkDelivered отмечает услугу выполненной (фаза 1).
// Доступно только оператору исполнителя, только для confirmed бронирования
// и не раньше запланированного времени начала услуги. Повторный вызов
// идемпотентен: запись о выполнении обновляется (заметки, фото), статус
// бронирования второй раз не меняется.
func (s *Service) MarkDelivered(ctx context.Context, bookingID int64, req *models.MarkDeliveredRequest) (*models.DeliveryResponse, error) {
	s.logger.Info("MarkDelivered: marking booking id=%d as delivered by user=%d", bookingID, req.UserID)

	booking, err := s.getBooking(ctx, "MarkDelivered", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOperatorAccess(ctx, booking.ProviderID, req.UserID); err != nil {
		s.logger.Warn("MarkDelivered: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	if booking.Status != domain.StatusConfirmed && booking.Status != domain.StatusServiceDelivered {
		s.logger.Warn("MarkDelivered: booking id=%d has status=%s, expected confirmed", bookingID, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrNotConfirmedBooking, booking.Status)
	}

	scheduledAt, err := booking.ScheduledAt()
	if err != nil {
		s.logger.Error("MarkDelivered: invalid scheduled time for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: MarkDelivered - invalid scheduled time: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	if now.Before(scheduledAt) {
		s.logger.Warn("MarkDelivered: booking id=%d is scheduled at %s, now is %s",
			bookingID, scheduledAt.Format("2006-01-02 15:04"), now.Format("2006-01-02 15:04"))
		return nil, fmt.Errorf("%w: scheduled at %s", ErrTooEarly, scheduledAt.Format("2006-01-02 15:04"))
	}

	var created *domain.ServiceDelivery
	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		created, err = s.deliveryRepo.Upsert(ctx, &domain.ServiceDelivery{
			BookingID:   bookingID,
			DeliveredAt: now,
			DeliveredBy: req.UserID,
			Notes:       req.Notes,
			PhotoRefs:   req.PhotoRefs,
		})
		if err != nil {
			return fmt.Errorf("%w: MarkDelivered - upsert delivery: %v", ErrInternal, err)
		}

		if booking.Status == domain.StatusConfirmed {
			if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusServiceDelivered, domain.StepDelivered); err != nil {
				return fmt.Errorf("%w: MarkDelivered - update booking status: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("MarkDelivered: failed for booking id=%d: %v", bookingID, err)
		return nil, err
	}

	s.logger.Info("MarkDelivered: booking id=%d marked as delivered, delivery id=%d", bookingID, created.ID)
	return models.FromDomainDelivery(created), nil
}

// ConfirmCompletion подтверждает выполнение услуги клиентом (фаза 2).
// Единственный путь перевода бронирования в completed. Требует существующей
// записи о выполнении: её отсутствие означает, что фаза 1 пропущена.
func (s *Service) ConfirmCompletion(ctx context.Context, bookingID int64, req *models.ConfirmCompletionRequest) error {
	s.logger.Info("ConfirmCompletion: confirming booking id=%d by user=%d", bookingID, req.UserID)

	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		s.logger.Warn("ConfirmCompletion: invalid rating=%d for booking id=%d", req.Rating, bookingID)
		return fmt.Errorf("%w: got %d", ErrInvalidRating, req.Rating)
	}

	booking, err := s.getBooking(ctx, "ConfirmCompletion", bookingID)
	if err != nil {
		return err
	}

	if booking.CustomerID != req.UserID {
		s.logger.Warn("ConfirmCompletion: user=%d is not the customer of booking id=%d", req.UserID, bookingID)
		return ErrAccessDenied
	}

	if booking.Status != domain.StatusServiceDelivered && booking.Status != domain.StatusAwaitingConfirmation {
		s.logger.Warn("ConfirmCompletion: booking id=%d has status=%s, expected service_delivered", bookingID, booking.Status)
		return fmt.Errorf("%w: status is %s", ErrNotDelivered, booking.Status)
	}

	delivery, err := s.deliveryRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, deliveryRepo.ErrDeliveryNotFound) {
			s.logger.Warn("ConfirmCompletion: no delivery record for booking id=%d", bookingID)
			return ErrDeliveryNotFound
		}
		s.logger.Error("ConfirmCompletion: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: ConfirmCompletion - repository error: %v", ErrInternal, err)
	}

	if delivery.IsConfirmed() {
		s.logger.Warn("ConfirmCompletion: delivery for booking id=%d is already confirmed", bookingID)
		return ErrAlreadyConfirmed
	}

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		err := s.deliveryRepo.Confirm(ctx, bookingID, deliveryRepo.ConfirmParams{
			ConfirmedAt:   s.timeProvider.Now(),
			Rating:        req.Rating,
			CustomerNotes: req.Notes,
			Recommend:     req.Recommend,
		})
		if err != nil {
			// Условный UPDATE не нашёл неподтверждённую запись: либо её нет,
			// либо параллельный запрос уже подтвердил
			if errors.Is(err, deliveryRepo.ErrDeliveryNotFound) {
				return ErrAlreadyConfirmed
			}
			return fmt.Errorf("%w: ConfirmCompletion - confirm delivery: %v", ErrInternal, err)
		}

		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusCompleted, domain.StepClosed); err != nil {
			return fmt.Errorf("%w: ConfirmCompletion - update booking status: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("ConfirmCompletion: booking id=%d completed with rating=%d", bookingID, req.Rating)
	return nil
}

// OpenDispute открывает спор по выполнению услуги вместо подтверждения.
// Доступно только клиенту, пока выполнение не подтверждено.
func (s *Service) OpenDispute(ctx context.Context, bookingID int64, req *models.OpenDisputeRequest) error {
	s.logger.Info("OpenDispute: opening dispute for booking id=%d by user=%d", bookingID, req.UserID)

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		s.logger.Warn("OpenDispute: dispute for booking id=%d without reason", bookingID)
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if len(reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}

	booking, err := s.getBooking(ctx, "OpenDispute", bookingID)
	if err != nil {
		return err
	}

	if booking.CustomerID != req.UserID {
		s.logger.Warn("OpenDispute: user=%d is not the customer of booking id=%d", req.UserID, bookingID)
		return ErrAccessDenied
	}

	if booking.Status != domain.StatusServiceDelivered && booking.Status != domain.StatusAwaitingConfirmation {
		s.logger.Warn("OpenDispute: booking id=%d has status=%s, expected service_delivered", bookingID, booking.Status)
		return fmt.Errorf("%w: status is %s", ErrNotDelivered, booking.Status)
	}

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := s.deliveryRepo.MarkDisputed(ctx, bookingID, reason); err != nil {
			if errors.Is(err, deliveryRepo.ErrDeliveryNotFound) {
				return ErrDeliveryNotFound
			}
			return fmt.Errorf("%w: OpenDispute - mark disputed: %v", ErrInternal, err)
		}

		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusDisputed, domain.StepDelivered); err != nil {
			return fmt.Errorf("%w: OpenDispute - update booking status: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("OpenDispute: dispute opened for booking id=%d", bookingID)
	return nil
}

// RecordCashCollection фиксирует принятую исполнителем наличную оплату.
// Бухгалтерская запись: статус бронирования не меняется, но сумма обязана
// совпадать с полной стоимостью бронирования.
func (s *Service) RecordCashCollection(ctx context.Context, bookingID int64, req *models.RecordCashCollectionRequest) (*models.CashCollectionResponse, error) {
	s.logger.Info("RecordCashCollection: recording cash for booking id=%d, amount=%.2f by user=%d",
		bookingID, req.Amount, req.UserID)

	booking, err := s.getBooking(ctx, "RecordCashCollection", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOperatorAccess(ctx, booking.ProviderID, req.UserID); err != nil {
		s.logger.Warn("RecordCashCollection: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	switch booking.Status {
	case domain.StatusServiceDelivered, domain.StatusAwaitingConfirmation, domain.StatusCompleted:
	default:
		s.logger.Warn("RecordCashCollection: booking id=%d has status=%s, expected delivered or completed",
			bookingID, booking.Status)
		return nil, fmt.Errorf("%w: status is %s", ErrNotDelivered, booking.Status)
	}

	if math.Abs(req.Amount-booking.TotalAmount) > amountEpsilon {
		s.logger.Warn("RecordCashCollection: amount mismatch for booking id=%d: collected=%.2f, total=%.2f",
			bookingID, req.Amount, booking.TotalAmount)
		return nil, fmt.Errorf("%w: collected %.2f, booking total %.2f", ErrAmountMismatch, req.Amount, booking.TotalAmount)
	}

	created, err := s.deliveryRepo.CreateCashCollection(ctx, &domain.CashCollection{
		BookingID:   bookingID,
		ProviderID:  booking.ProviderID,
		Amount:      req.Amount,
		CollectedAt: s.timeProvider.Now(),
		Note:        req.Note,
	})
	if err != nil {
		s.logger.Error("RecordCashCollection: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: RecordCashCollection - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("RecordCashCollection: recorded cash collection id=%d for booking id=%d", created.ID, bookingID)
	return models.FromDomainCashCollection(created), nil
}

// GetDelivery возвращает запись о выполнении услуги вместе с наличными оплатами.
// Доступно клиенту бронирования и операторам исполнителя.
func (s *Service) GetDelivery(ctx context.Context, bookingID int64, userID int64) (*models.DeliveryResponse, *models.CashCollectionListResponse, error) {
	s.logger.Info("GetDelivery: fetching delivery for booking id=%d by user=%d", bookingID, userID)

	booking, err := s.getBooking(ctx, "GetDelivery", bookingID)
	if err != nil {
		return nil, nil, err
	}

	if booking.CustomerID != userID {
		if err := s.checkOperatorAccess(ctx, booking.ProviderID, userID); err != nil {
			s.logger.Warn("GetDelivery: access denied for user=%d to booking id=%d", userID, bookingID)
			return nil, nil, ErrAccessDenied
		}
	}

	delivery, err := s.deliveryRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, deliveryRepo.ErrDeliveryNotFound) {
			s.logger.Warn("GetDelivery: no delivery record for booking id=%d", bookingID)
			return nil, nil, ErrDeliveryNotFound
		}
		s.logger.Error("GetDelivery: repository error for booking id=%d: %v", bookingID, err)
		return nil, nil, fmt.Errorf("%w: GetDelivery - repository error: %v", ErrInternal, err)
	}

	collections, err := s.deliveryRepo.GetCashCollections(ctx, bookingID)
	if err != nil {
		s.logger.Error("GetDelivery: failed to fetch cash collections for booking id=%d: %v", bookingID, err)
		return nil, nil, fmt.Errorf("%w: GetDelivery - fetch cash collections: %v", ErrInternal, err)
	}

	return models.FromDomainDelivery(delivery), models.FromDomainCashCollectionList(collections), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkOperatorAccess проверяет, что пользователь является оператором исполнителя
func (s *Service) checkOperatorAccess(ctx context.Context, providerID int64, userID int64) error {
	provider, err := s.catalogClient.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrProviderNotFound) {
			s.logger.Warn("checkOperatorAccess: provider id=%d not found", providerID)
			return ErrProviderNotFound
		}
		s.logger.Error("checkOperatorAccess: failed to get provider id=%d: %v", providerID, err)
		return fmt.Errorf("%w: checkOperatorAccess - failed to get provider: %v", ErrInternal, err)
	}

	if !provider.IsOperator(userID) {
		s.logger.Warn("checkOperatorAccess: user=%d is not an operator of provider=%d", userID, providerID)
		return ErrAccessDenied
	}

	return nil
}
