package service_windows

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/availability"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/availability/models"
)

const (
	msgInvalidServiceID   = "некорректный ID услуги"
	msgInvalidWindowID    = "некорректный ID окна"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgServiceNotFound    = "услуга не найдена"
	msgWindowNotFound     = "окно не найдено"
	msgForbidden          = "доступ запрещен"
	msgDuplicateWindow    = "окно услуги на этот день недели уже существует"
)

// ServiceWindowRequest HTTP request model
type ServiceWindowRequest struct {
	Weekday       int      `json:"weekday"`
	StartTime     string   `json:"startTime"`
	EndTime       string   `json:"endTime"`
	MaxBookings   int      `json:"maxBookings"`
	IsPeak        bool     `json:"isPeak"`
	PriceOverride *float64 `json:"priceOverride,omitempty"`
}

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate POST /api/v1/services/{serviceId}/time-slots
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := h.parseServiceID(w, r)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /services/{id}/time-slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ServiceWindowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /services/{id}/time-slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.CreateServiceWindow(r.Context(), serviceID, &models.ServiceWindowRequest{
		UserID:        userID,
		Weekday:       req.Weekday,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		MaxBookings:   req.MaxBookings,
		IsPeak:        req.IsPeak,
		PriceOverride: req.PriceOverride,
	})
	if err != nil {
		h.respondServiceError(w, "POST /services/{id}/time-slots", serviceID, userID, err)
		return
	}

	h.logger.Info("POST /services/{id}/time-slots - Window created: service_id=%d, window_id=%d, weekday=%d",
		serviceID, resp.ID, resp.Weekday)
	handlers.RespondJSON(w, http.StatusCreated, resp)
}

// HandleDelete DELETE /api/v1/services/{serviceId}/time-slots/{windowId}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := h.parseServiceID(w, r)
	if !ok {
		return
	}

	windowID, err := strconv.ParseInt(mux.Vars(r)["windowId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /services/{id}/time-slots/{windowId} - Invalid window ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWindowID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /services/{id}/time-slots/{windowId} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err = h.service.DeleteServiceWindow(r.Context(), serviceID, windowID, &models.DeleteRequest{UserID: userID})
	if err != nil {
		h.respondServiceError(w, "DELETE /services/{id}/time-slots/{windowId}", serviceID, userID, err)
		return
	}

	h.logger.Info("DELETE /services/{id}/time-slots/{windowId} - Window deleted: service_id=%d, window_id=%d",
		serviceID, windowID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseServiceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	serviceID, err := strconv.ParseInt(mux.Vars(r)["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s /services/{id}/time-slots - Invalid service ID: %v", r.Method, err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return 0, false
	}
	return serviceID, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, serviceID, userID int64, err error) {
	switch {
	case errors.Is(err, availability.ErrServiceNotFound):
		h.logger.Warn("%s - Service not found: service_id=%d", op, serviceID)
		handlers.RespondNotFound(w, msgServiceNotFound)

	case errors.Is(err, availability.ErrWindowNotFound):
		h.logger.Warn("%s - Window not found: service_id=%d", op, serviceID)
		handlers.RespondNotFound(w, msgWindowNotFound)

	case errors.Is(err, availability.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: service_id=%d, user_id=%d", op, serviceID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, availability.ErrDuplicateWindow):
		h.logger.Warn("%s - Duplicate window: service_id=%d", op, serviceID)
		handlers.RespondConflict(w, msgDuplicateWindow)

	case errors.Is(err, availability.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: service_id=%d, error=%v", op, serviceID, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: service_id=%d, error=%v", op, serviceID, err)
		handlers.RespondInternalError(w)
	}
}
