package mark_delivered

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
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgNotConfirmed       = "услугу можно отметить выполненной только для подтверждённого бронирования"
	msgTooEarly           = "услугу нельзя отметить выполненной до её начала"
)

// MarkDeliveredRequest HTTP request model
type MarkDeliveredRequest struct {
	Notes     *string  `json:"notes,omitempty"`
	PhotoRefs []string `json:"photoRefs,omitempty"`
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

// Handle POST /api/v1/bookings/{bookingId}/delivery
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/delivery - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/delivery - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req MarkDeliveredRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		h.logger.Warn("POST /bookings/{id}/delivery - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.MarkDelivered(r.Context(), bookingID, &models.MarkDeliveredRequest{
		UserID:    userID,
		Notes:     req.Notes,
		PhotoRefs: req.PhotoRefs,
	})
	if err != nil {
		switch {
		case errors.Is(err, deliveries.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/delivery - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, deliveries.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/delivery - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, deliveries.ErrNotConfirmedBooking):
			h.logger.Warn("POST /bookings/{id}/delivery - Booking not confirmed: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotConfirmed)

		case errors.Is(err, deliveries.ErrTooEarly):
			h.logger.Warn("POST /bookings/{id}/delivery - Too early: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgTooEarly)

		case errors.Is(err, deliveries.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/delivery - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/delivery - Failed to mark delivered: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/delivery - Marked delivered: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
