package get_delivery

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
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgBookingNotFound  = "бронирование не найдено"
	msgDeliveryNotFound = "отметка о выполнении услуги не найдена"
	msgForbidden        = "доступ запрещен"
)

// DeliveryDetailsResponse HTTP response model
type DeliveryDetailsResponse struct {
	Delivery        *models.DeliveryResponse        `json:"delivery"`
	CashCollections []models.CashCollectionResponse `json:"cashCollections"`
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

// Handle GET /api/v1/bookings/{bookingId}/delivery
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id}/delivery - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/{id}/delivery - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	delivery, collections, err := h.service.GetDelivery(r.Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, deliveries.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/{id}/delivery - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, deliveries.ErrDeliveryNotFound):
			h.logger.Warn("GET /bookings/{id}/delivery - Delivery not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgDeliveryNotFound)

		case errors.Is(err, deliveries.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{id}/delivery - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /bookings/{id}/delivery - Failed to get delivery: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	resp := DeliveryDetailsResponse{
		Delivery:        delivery,
		CashCollections: collections.Collections,
	}

	h.logger.Info("GET /bookings/{id}/delivery - Delivery returned: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
