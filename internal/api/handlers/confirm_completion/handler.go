package confirm_completion

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
	msgDeliveryNotFound   = "отметка о выполнении услуги не найдена"
	msgForbidden          = "доступ запрещен"
	msgNotDelivered       = "услуга ещё не отмечена выполненной"
	msgAlreadyConfirmed   = "выполнение услуги уже подтверждено"
	msgInvalidRating      = "оценка должна быть от 1 до 5"
)

// ConfirmCompletionRequest HTTP request model
type ConfirmCompletionRequest struct {
	Rating    int     `json:"rating"`
	Notes     *string `json:"notes,omitempty"`
	Recommend bool    `json:"recommend"`
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

// Handle POST /api/v1/bookings/{bookingId}/delivery/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/delivery/confirm - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/delivery/confirm - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ConfirmCompletionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/delivery/confirm - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err = h.service.ConfirmCompletion(r.Context(), bookingID, &models.ConfirmCompletionRequest{
		UserID:    userID,
		Rating:    req.Rating,
		Notes:     req.Notes,
		Recommend: req.Recommend,
	})
	if err != nil {
		switch {
		case errors.Is(err, deliveries.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/delivery/confirm - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, deliveries.ErrDeliveryNotFound):
			h.logger.Warn("POST /bookings/{id}/delivery/confirm - Delivery not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgDeliveryNotFound)

		case errors.Is(err, deliveries.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/delivery/confirm - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, deliveries.ErrNotDelivered):
			h.logger.Warn("POST /bookings/{id}/delivery/confirm - Not delivered: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotDelivered)

		case errors.Is(err, deliveries.ErrAlreadyConfirmed):
			h.logger.Warn("POST /bookings/{id}/delivery/confirm - Already confirmed: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgAlreadyConfirmed)

		case errors.Is(err, deliveries.ErrInvalidRating):
			h.logger.Warn("POST /bookings/{id}/delivery/confirm - Invalid rating %d: booking_id=%d",
				req.Rating, bookingID)
			handlers.RespondBadRequest(w, msgInvalidRating)

		case errors.Is(err, deliveries.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/delivery/confirm - Invalid input: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/delivery/confirm - Failed to confirm completion: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/delivery/confirm - Completion confirmed: booking_id=%d, user_id=%d, rating=%d",
		bookingID, userID, req.Rating)
	w.WriteHeader(http.StatusNoContent)
}
