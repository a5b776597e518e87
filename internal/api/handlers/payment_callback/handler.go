package payment_callback

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	usecase "github.com/m04kA/SMC-MarketplaceService/internal/usecase/payment_callback"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgBookingNotFound    = "бронирование не найдено"
	msgUnexpectedStatus   = "бронирование не ожидает оплату"
	msgAmountMismatch     = "сумма платежа не совпадает с суммой бронирования"
)

// CallbackRequest HTTP request model платёжного шлюза
type CallbackRequest struct {
	EventID   string  `json:"eventId"`
	BookingID int64   `json:"bookingId"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

type Handler struct {
	usecase PaymentCallbackUsecase
	logger  Logger
}

func NewHandler(uc PaymentCallbackUsecase, logger Logger) *Handler {
	return &Handler{
		usecase: uc,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/callback
//
// Внутренний endpoint для платёжного шлюза, не требует X-User-ID.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /payments/callback - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.usecase.Execute(r.Context(), &usecase.Request{
		EventID:   req.EventID,
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Status:    req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrBookingNotFound):
			h.logger.Warn("POST /payments/callback - Booking not found: booking_id=%d, event_id=%s",
				req.BookingID, req.EventID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, usecase.ErrUnexpectedStatus):
			h.logger.Warn("POST /payments/callback - Unexpected booking status: booking_id=%d, event_id=%s",
				req.BookingID, req.EventID)
			handlers.RespondConflict(w, msgUnexpectedStatus)

		case errors.Is(err, usecase.ErrAmountMismatch):
			h.logger.Warn("POST /payments/callback - Amount mismatch: booking_id=%d, amount=%.2f, event_id=%s",
				req.BookingID, req.Amount, req.EventID)
			handlers.RespondUnprocessableEntity(w, msgAmountMismatch)

		case errors.Is(err, usecase.ErrInvalidInput):
			h.logger.Warn("POST /payments/callback - Invalid input: event_id=%s, error=%v", req.EventID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /payments/callback - Failed to process callback: booking_id=%d, event_id=%s, error=%v",
				req.BookingID, req.EventID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/callback - Callback processed: booking_id=%d, event_id=%s, already_processed=%t",
		req.BookingID, req.EventID, resp.AlreadyProcessed)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
