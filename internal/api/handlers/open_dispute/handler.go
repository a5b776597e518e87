package open_dispute

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
	msgNotDelivered       = "спор можно открыть только после отметки о выполнении"
	msgAlreadyConfirmed   = "выполнение услуги уже подтверждено, спор недоступен"
)

// OpenDisputeRequest HTTP request model
type OpenDisputeRequest struct {
	Reason string `json:"reason"`
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

// Handle POST /api/v1/bookings/{bookingId}/delivery/dispute
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/delivery/dispute - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/delivery/dispute - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req OpenDisputeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/delivery/dispute - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err = h.service.OpenDispute(r.Context(), bookingID, &models.OpenDisputeRequest{
		UserID: userID,
		Reason: req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, deliveries.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/delivery/dispute - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, deliveries.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/delivery/dispute - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, deliveries.ErrNotDelivered):
			h.logger.Warn("POST /bookings/{id}/delivery/dispute - Not delivered: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotDelivered)

		case errors.Is(err, deliveries.ErrAlreadyConfirmed):
			h.logger.Warn("POST /bookings/{id}/delivery/dispute - Already confirmed: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgAlreadyConfirmed)

		case errors.Is(err, deliveries.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/delivery/dispute - Invalid input: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/delivery/dispute - Failed to open dispute: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/delivery/dispute - Dispute opened: booking_id=%d, user_id=%d",
		bookingID, userID)
	w.WriteHeader(http.StatusNoContent)
}
