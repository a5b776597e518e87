package payment_callback

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
)

// Статусы платежа от провайдера
const (
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

const amountEpsilon = 0.005

// Request модель callback'а платежного провайдера
type Request struct {
	EventID   string  // UUID события у провайдера
	BookingID int64   // ID бронирования
	Amount    float64 // Сумма платежа
	Status    string  // succeeded | failed
}

// Response модель результата обработки callback'а
type Response struct {
	BookingID int64
	Status    string // Статус бронирования после обработки

	// Событие уже обрабатывалось раньше: повторная доставка, ничего не менялось
	AlreadyProcessed bool
}

// UseCase use case обработки callback'а платежного провайдера.
// Обработка идемпотентна по event_id: провайдер может доставить событие
// несколько раз, статус бронирования меняется только первой доставкой.
type UseCase struct {
	bookingRepo BookingRepository
	txManager   TransactionManager
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute выполняет use case обработки платежного callback'а
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("PaymentCallback: event=%s, booking=%d, amount=%.2f, status=%s",
		req.EventID, req.BookingID, req.Amount, req.Status)

	// 1. Валидация входных данных
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		uc.logger.Warn("PaymentCallback: invalid event id %q: %v", req.EventID, err)
		return nil, fmt.Errorf("%w: eventId must be a valid UUID", ErrInvalidInput)
	}
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: bookingId must be positive", ErrInvalidInput)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if req.Status != PaymentSucceeded && req.Status != PaymentFailed {
		return nil, fmt.Errorf("%w: status must be %q or %q", ErrInvalidInput, PaymentSucceeded, PaymentFailed)
	}

	var response *Response

	// 2. Фиксация события и смена статуса в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("PaymentCallback: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("PaymentCallback: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 2.1. Идемпотентность: повторная доставка события ничего не меняет
		inserted, err := uc.bookingRepo.RecordPaymentEvent(txCtx, eventID, req.BookingID, req.Amount, req.Status)
		if err != nil {
			uc.logger.Error("PaymentCallback: failed to record event %s: %v", eventID, err)
			return fmt.Errorf("%w: failed to record event: %v", ErrInternal, err)
		}
		if !inserted {
			uc.logger.Info("PaymentCallback: event %s already processed, booking id=%d unchanged",
				eventID, req.BookingID)
			response = &Response{
				BookingID:        req.BookingID,
				Status:           string(booking.Status),
				AlreadyProcessed: true,
			}
			return nil
		}

		// 2.2. Callback имеет смысл только для бронирований, ожидающих оплату
		if booking.Status != domain.StatusPending && booking.Status != domain.StatusPaymentPending {
			uc.logger.Warn("PaymentCallback: booking id=%d has status=%s, not awaiting payment",
				req.BookingID, booking.Status)
			return fmt.Errorf("%w: status is %s", ErrUnexpectedStatus, booking.Status)
		}

		// 2.3. Сумма платежа обязана совпадать со стоимостью бронирования
		if math.Abs(req.Amount-booking.TotalAmount) > amountEpsilon {
			uc.logger.Warn("PaymentCallback: amount mismatch for booking id=%d: paid=%.2f, total=%.2f",
				req.BookingID, req.Amount, booking.TotalAmount)
			return fmt.Errorf("%w: paid %.2f, booking total %.2f", ErrAmountMismatch, req.Amount, booking.TotalAmount)
		}

		// 2.4. Успешная оплата подтверждает бронирование,
		// неуспешная возвращает его в ожидание оплаты
		newStatus := booking.Status
		if req.Status == PaymentSucceeded {
			newStatus = domain.StatusConfirmed
			if err := uc.bookingRepo.UpdateStatus(txCtx, req.BookingID, newStatus, domain.StepPaymentConfirmed); err != nil {
				uc.logger.Error("PaymentCallback: failed to confirm booking id=%d: %v", req.BookingID, err)
				return fmt.Errorf("%w: failed to confirm booking: %v", ErrInternal, err)
			}
		} else if booking.Status == domain.StatusPending {
			newStatus = domain.StatusPending
			if err := uc.bookingRepo.UpdateStatus(txCtx, req.BookingID, newStatus, domain.StepAwaitingPayment); err != nil {
				uc.logger.Error("PaymentCallback: failed to update booking id=%d: %v", req.BookingID, err)
				return fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
			}
		}

		response = &Response{
			BookingID: req.BookingID,
			Status:    string(newStatus),
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("PaymentCallback: booking id=%d is now %s (alreadyProcessed=%v)",
		response.BookingID, response.Status, response.AlreadyProcessed)

	return response, nil
}
