package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/slot"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/bookings/models"
)

// Service сервис для работы с жизненным циклом бронирований
type Service struct {
	bookingRepo   BookingRepository
	slotRepo      SlotRepository
	catalogClient CatalogServiceClient
	txManager     TransactionManager
	logger        Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	catalogClient CatalogServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:   bookingRepo,
		slotRepo:      slotRepo,
		catalogClient: catalogClient,
		txManager:     txManager,
		logger:        logger,
	}
}

// GetByID получает бронирование по ID
// Проверяет права доступа - пользователь может видеть только своё бронирование
// или если он является оператором исполнителя
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetCustomerBookings получает историю бронирований клиента
// Опционально фильтрует по статусу
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCustomerBookings: fetching bookings for customer=%d, status=%v", req.CustomerID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerBookings: invalid status=%s for customer=%d", *req.Status, req.CustomerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByCustomerID(ctx, req.CustomerID, domainStatus)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: successfully fetched %d bookings for customer=%d", len(bookings), req.CustomerID)
	return models.FromDomainBookingList(bookings), nil
}

// GetProviderBookings получает бронирования исполнителя с гибкой фильтрацией
// Поддерживает фильтрацию по услуге, периоду, статусу и включению неактивных бронирований
// Доступно только операторам исполнителя
func (s *Service) GetProviderBookings(ctx context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetProviderBookings: fetching bookings for provider=%d, user=%d", req.ProviderID, req.UserID)
	if req.ServiceID != nil {
		logMsg += fmt.Sprintf(", service=%d", *req.ServiceID)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if err := s.checkOperatorAccess(ctx, req.ProviderID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderBookings: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderBookings: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderBookings: successfully fetched %d bookings for provider=%d", len(bookings), req.ProviderID)
	return models.FromDomainBookingList(bookings), nil
}

// UpdateStatus обновляет статус бронирования прямым запросом.
// Напрямую доступны только переходы в confirmed (клиент), rejected (оператор
// исполнителя, причина обязательна) и cancelled (клиент или оператор, причина
// обязательна). Системные статусы и статусы протокола подтверждения выполнения
// (service_delivered, completed) прямым запросом не выставляются.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d",
		bookingID, req.Status, req.UserID)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return fmt.Errorf("%w: %s", ErrInvalidStatus, req.Status)
	}

	if newStatus.IsInternal() {
		s.logger.Warn("UpdateStatus: attempt to set internal status=%s for booking id=%d by user=%d",
			newStatus, bookingID, req.UserID)
		return fmt.Errorf("%w: %s", ErrInternalStatus, newStatus)
	}

	if newStatus == domain.StatusCompleted || newStatus == domain.StatusServiceDelivered {
		s.logger.Warn("UpdateStatus: attempt to set protocol status=%s directly for booking id=%d by user=%d",
			newStatus, bookingID, req.UserID)
		return fmt.Errorf("%w: %s", ErrProtocolOnly, newStatus)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if !domain.CanTransition(booking.Status, newStatus) {
		s.logger.Warn("UpdateStatus: transition %s -> %s not allowed for booking id=%d",
			booking.Status, newStatus, bookingID)
		return transitionError(booking.Status, newStatus)
	}

	switch newStatus {
	case domain.StatusConfirmed:
		// Подтверждение с оплатой наличными - подтверждает сам клиент
		if booking.CustomerID != req.UserID {
			s.logger.Warn("UpdateStatus: user=%d is not the customer of booking id=%d", req.UserID, bookingID)
			return ErrAccessDenied
		}

		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusConfirmed, domain.StepPaymentConfirmed); err != nil {
			return s.wrapRepoError("UpdateStatus", bookingID, err)
		}

	case domain.StatusRejected:
		if err := s.checkOperatorAccess(ctx, booking.ProviderID, req.UserID); err != nil {
			s.logger.Warn("UpdateStatus: user=%d may not reject booking id=%d", req.UserID, bookingID)
			return err
		}

		reason, err := requireReason(req.Reason)
		if err != nil {
			s.logger.Warn("UpdateStatus: rejection of booking id=%d without reason", bookingID)
			return err
		}

		if err := s.bookingRepo.Reject(ctx, bookingID, reason); err != nil {
			return s.wrapRepoError("UpdateStatus", bookingID, err)
		}

	case domain.StatusCancelled:
		reason, err := requireReason(req.Reason)
		if err != nil {
			s.logger.Warn("UpdateStatus: cancellation of booking id=%d without reason", bookingID)
			return err
		}

		return s.Cancel(ctx, bookingID, &models.CancelBookingRequest{
			UserID: req.UserID,
			Reason: reason,
		})

	default:
		// pending как цель не встречается ни в одной строке таблицы переходов,
		// сюда можно попасть только при расширении таблицы без правки guard'ов
		return transitionError(booking.Status, newStatus)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
	return nil
}

// Cancel отменяет бронирование и освобождает занятый слот.
// Клиент может отменить своё бронирование, оператор - любое бронирование
// своего исполнителя. Причина обязательна. Освобождение слота и смена статуса
// выполняются в одной serializable транзакции.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	reason, err := requireReason(&req.Reason)
	if err != nil {
		s.logger.Warn("Cancel: cancellation of booking id=%d without reason", bookingID)
		return err
	}

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
			return fmt.Errorf("%w: status is %s", ErrCannotCancel, booking.Status)
		}

		if booking.CustomerID != req.UserID {
			if err := s.checkOperatorAccess(ctx, booking.ProviderID, req.UserID); err != nil {
				s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
				return ErrAccessDenied
			}
		}

		// Сначала освобождаем слот, потом снимаем ссылку на него в бронировании
		if booking.HoldsSlot() {
			if err := s.slotRepo.Release(ctx, *booking.SlotID); err != nil {
				if errors.Is(err, slotRepo.ErrNothingReleased) {
					// Счётчик уже на нуле - рассинхронизация слота и бронирования,
					// отмену не блокируем, но такое надо разбирать руками
					s.logger.Error("Cancel: slot id=%d already has zero reservations for booking id=%d",
						*booking.SlotID, bookingID)
				} else {
					return fmt.Errorf("%w: Cancel - failed to release slot: %v", ErrInternal, err)
				}
			}
		}

		if err := s.bookingRepo.Cancel(ctx, bookingID, reason); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return nil
}

// Вспомогательные методы

// checkUserAccess проверяет, что пользователь имеет доступ к бронированию
// Пользователь может видеть своё бронирование или если он оператор исполнителя
func (s *Service) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.CustomerID == userID {
		return nil
	}

	if err := s.checkOperatorAccess(ctx, booking.ProviderID, userID); err != nil {
		// Ошибка уже залогирована в checkOperatorAccess
		return ErrAccessDenied
	}

	return nil
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

func (s *Service) wrapRepoError(op string, bookingID int64, err error) error {
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		s.logger.Warn("%s: booking id=%d not found during update", op, bookingID)
		return ErrBookingNotFound
	}
	s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// transitionError формирует ошибку запрещенного перехода с перечислением
// допустимых целевых статусов
func transitionError(from, to domain.BookingStatus) error {
	allowed := domain.AllowedNextStatuses(from)
	if len(allowed) == 0 {
		return fmt.Errorf("%w: %s is a terminal status", ErrInvalidTransition, from)
	}

	names := make([]string, 0, len(allowed))
	for _, status := range allowed {
		names = append(names, string(status))
	}
	return fmt.Errorf("%w: %s -> %s (allowed: %s)", ErrInvalidTransition, from, to, strings.Join(names, ", "))
}

// requireReason проверяет, что причина передана и не пустая
func requireReason(reason *string) (string, error) {
	if reason == nil {
		return "", ErrReasonRequired
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return "", ErrReasonRequired
	}
	if len(trimmed) > domain.MaxReasonLength {
		return "", fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}
	return trimmed, nil
}
