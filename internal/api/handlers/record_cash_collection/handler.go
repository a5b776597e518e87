package record_cash_collection

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/deliveries"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/deliveries/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgBookingNotFound    = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgNotDelivered       = "наличную оплату можно зафиксировать только после выполнения услуги"
	msgAmountMismatch     = "сумма оплаты не совпадает с суммой бронирования"
)

// RecordCashCollectionRequest HTTP request model
type RecordCashCollectionRequest struct {
	Amount float64 `json:"amount"`
	Note   *string `json:"note,omitempty"`
}

type Handler struct {
	service DeliveryService
	logger  Logger
}

func NewHandler(service DeliveryService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/cash-collections
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/cash-collections - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/cash-collections - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RecordCashCollectionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/cash-collections - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.RecordCashCollection(r.Context(), bookingID, &models.RecordCashCollectionRequest{
		UserID: userID,
		Amount: req.Amount,
		Note:   req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, deliveries.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/cash-collections - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, deliveries.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/cash-collections - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, deliveries.ErrNotDelivered):
			h.logger.Warn("POST /bookings/{id}/cash-collections - Not delivered: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotDelivered)

		case errors.Is(err, deliveries.ErrAmountMismatch):
			h.logger.Warn("POST /bookings/{id}/cash-collections - Amount mismatch: booking_id=%d, amount=%.2f",
				bookingID, req.Amount)
			handlers.RespondUnprocessableEntity(w, msgAmountMismatch)

		case errors.Is(err, deliveries.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/cash-collections - Invalid input: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/cash-collections - Failed to record cash collection: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/cash-collections - Cash collection recorded: booking_id=%d, amount=%.2f, user_id=%d",
		bookingID, req.Amount, userID)
	handlers.RespondJSON(w, http.StatusCreated, resp)
}
