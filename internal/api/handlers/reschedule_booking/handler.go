package reschedule_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	usecase "github.com/m04kA/SMC-MarketplaceService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgBookingNotFound    = "бронирование не найдено"
	msgSlotNotFound       = "слот не найден"
	msgForbidden          = "доступ запрещен"
	msgCannotReschedule   = "бронирование нельзя перенести в текущем статусе"
	msgLimitExceeded      = "исчерпан лимит переносов для этого бронирования"
	msgSameSlot           = "бронирование уже назначено на этот слот"
	msgServiceMismatch    = "слот относится к другой услуге"
	msgSlotNotAvailable   = "в выбранном слоте нет свободных мест"
	msgSlotInPast         = "выбранный слот уже начался"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	NewSlotID int64  `json:"newSlotId"`
	Reason    string `json:"reason"`
}

type Handler struct {
	usecase RescheduleUsecase
	logger  Logger
}

func NewHandler(uc RescheduleUsecase, logger Logger) *Handler {
	return &Handler{
		usecase: uc,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.usecase.Execute(r.Context(), &usecase.Request{
		UserID:    userID,
		BookingID: bookingID,
		NewSlotID: req.NewSlotID,
		Reason:    req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/reschedule - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, usecase.ErrSlotNotFound):
			h.logger.Warn("POST /bookings/{id}/reschedule - Slot not found: booking_id=%d, slot_id=%d",
				bookingID, req.NewSlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, usecase.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/reschedule - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, usecase.ErrCannotReschedule):
			h.logger.Warn("POST /bookings/{id}/reschedule - Cannot reschedule: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgCannotReschedule)

		case errors.Is(err, usecase.ErrRescheduleLimitExceeded):
			h.logger.Warn("POST /bookings/{id}/reschedule - Limit exceeded: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgLimitExceeded)

		case errors.Is(err, usecase.ErrSameSlot):
			h.logger.Warn("POST /bookings/{id}/reschedule - Same slot: booking_id=%d, slot_id=%d",
				bookingID, req.NewSlotID)
			handlers.RespondConflict(w, msgSameSlot)

		case errors.Is(err, usecase.ErrServiceMismatch):
			h.logger.Warn("POST /bookings/{id}/reschedule - Service mismatch: booking_id=%d, slot_id=%d",
				bookingID, req.NewSlotID)
			handlers.RespondUnprocessableEntity(w, msgServiceMismatch)

		case errors.Is(err, usecase.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings/{id}/reschedule - Slot full: booking_id=%d, slot_id=%d",
				bookingID, req.NewSlotID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, usecase.ErrSlotInPast):
			h.logger.Warn("POST /bookings/{id}/reschedule - Slot in past: booking_id=%d, slot_id=%d",
				bookingID, req.NewSlotID)
			handlers.RespondConflict(w, msgSlotInPast)

		case errors.Is(err, usecase.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/reschedule - Invalid input: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/reschedule - Failed to reschedule: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/reschedule - Booking rescheduled: booking_id=%d, slot_id=%d, user_id=%d",
		bookingID, req.NewSlotID, userID)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
