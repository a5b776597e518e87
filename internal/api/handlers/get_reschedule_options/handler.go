package get_reschedule_options

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	usecase "github.com/m04kA/SMC-MarketplaceService/internal/usecase/get_reschedule_options"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgCannotReschedule = "бронирование нельзя перенести в текущем статусе"
	msgLimitExceeded    = "исчерпан лимит переносов для этого бронирования"
)

type Handler struct {
	usecase OptionsUsecase
	logger  Logger
}

func NewHandler(uc OptionsUsecase, logger Logger) *Handler {
	return &Handler{
		usecase: uc,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}/reschedule/options
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id}/reschedule/options - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/{id}/reschedule/options - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	resp, err := h.usecase.Execute(r.Context(), &usecase.Request{
		UserID:    userID,
		BookingID: bookingID,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/{id}/reschedule/options - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, usecase.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{id}/reschedule/options - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, usecase.ErrCannotReschedule):
			h.logger.Warn("GET /bookings/{id}/reschedule/options - Cannot reschedule: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgCannotReschedule)

		case errors.Is(err, usecase.ErrRescheduleLimitExceeded):
			h.logger.Warn("GET /bookings/{id}/reschedule/options - Limit exceeded: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgLimitExceeded)

		case errors.Is(err, usecase.ErrInvalidInput):
			h.logger.Warn("GET /bookings/{id}/reschedule/options - Invalid input: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /bookings/{id}/reschedule/options - Failed to get options: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/{id}/reschedule/options - Options returned: booking_id=%d, count=%d",
		bookingID, len(resp.Options))
	handlers.RespondJSON(w, http.StatusOK, resp)
}
