package provider_availability

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
	msgInvalidProviderID  = "некорректный ID исполнителя"
	msgInvalidWindowID    = "некорректный ID рабочего окна"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgWindowNotFound     = "рабочее окно не найдено"
	msgProviderNotFound   = "исполнитель не найден"
	msgForbidden          = "доступ запрещен"
	msgDuplicateWindow    = "рабочее окно на этот день недели уже существует"
)

// WindowRequest HTTP request model
type WindowRequest struct {
	Weekday    int     `json:"weekday"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`
	IsActive   bool    `json:"isActive"`
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

// HandleList GET /api/v1/providers/{providerId}/availability
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.parseProviderID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.ListWindows(r.Context(), providerID)
	if err != nil {
		h.logger.Error("GET /providers/{id}/availability - Failed to list windows: provider_id=%d, error=%v",
			providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /providers/{id}/availability - Windows returned: provider_id=%d, count=%d",
		providerID, len(resp.Windows))
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// HandleCreate POST /api/v1/providers/{providerId}/availability
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.parseProviderID(w, r)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /providers/{id}/availability - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req WindowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /providers/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.CreateWindow(r.Context(), providerID, h.toServiceRequest(userID, &req))
	if err != nil {
		h.respondServiceError(w, "POST /providers/{id}/availability", providerID, userID, err)
		return
	}

	h.logger.Info("POST /providers/{id}/availability - Window created: provider_id=%d, window_id=%d, weekday=%d",
		providerID, resp.ID, resp.Weekday)
	handlers.RespondJSON(w, http.StatusCreated, resp)
}

// HandleUpdate PUT /api/v1/providers/{providerId}/availability/{windowId}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.parseProviderID(w, r)
	if !ok {
		return
	}

	windowID, ok := h.parseWindowID(w, r)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /providers/{id}/availability/{windowId} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req WindowRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /providers/{id}/availability/{windowId} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.UpdateWindow(r.Context(), providerID, windowID, h.toServiceRequest(userID, &req))
	if err != nil {
		h.respondServiceError(w, "PUT /providers/{id}/availability/{windowId}", providerID, userID, err)
		return
	}

	h.logger.Info("PUT /providers/{id}/availability/{windowId} - Window updated: provider_id=%d, window_id=%d",
		providerID, windowID)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// HandleDelete DELETE /api/v1/providers/{providerId}/availability/{windowId}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	providerID, ok := h.parseProviderID(w, r)
	if !ok {
		return
	}

	windowID, ok := h.parseWindowID(w, r)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /providers/{id}/availability/{windowId} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err := h.service.DeleteWindow(r.Context(), providerID, windowID, &models.DeleteRequest{UserID: userID})
	if err != nil {
		h.respondServiceError(w, "DELETE /providers/{id}/availability/{windowId}", providerID, userID, err)
		return
	}

	h.logger.Info("DELETE /providers/{id}/availability/{windowId} - Window deleted: provider_id=%d, window_id=%d",
		providerID, windowID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseProviderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s /providers/{id}/availability - Invalid provider ID: %v", r.Method, err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return 0, false
	}
	return providerID, true
}

func (h *Handler) parseWindowID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	windowID, err := strconv.ParseInt(mux.Vars(r)["windowId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s /providers/{id}/availability/{windowId} - Invalid window ID: %v", r.Method, err)
		handlers.RespondBadRequest(w, msgInvalidWindowID)
		return 0, false
	}
	return windowID, true
}

func (h *Handler) toServiceRequest(userID int64, req *WindowRequest) *models.WindowRequest {
	return &models.WindowRequest{
		UserID:     userID,
		Weekday:    req.Weekday,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		BreakStart: req.BreakStart,
		BreakEnd:   req.BreakEnd,
		IsActive:   req.IsActive,
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, providerID, userID int64, err error) {
	switch {
	case errors.Is(err, availability.ErrWindowNotFound):
		h.logger.Warn("%s - Window not found: provider_id=%d", op, providerID)
		handlers.RespondNotFound(w, msgWindowNotFound)

	case errors.Is(err, availability.ErrProviderNotFound):
		h.logger.Warn("%s - Provider not found: provider_id=%d", op, providerID)
		handlers.RespondNotFound(w, msgProviderNotFound)

	case errors.Is(err, availability.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: provider_id=%d, user_id=%d", op, providerID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, availability.ErrDuplicateWindow):
		h.logger.Warn("%s - Duplicate window: provider_id=%d", op, providerID)
		handlers.RespondConflict(w, msgDuplicateWindow)

	case errors.Is(err, availability.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: provider_id=%d, error=%v", op, providerID, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: provider_id=%d, error=%v", op, providerID, err)
		handlers.RespondInternalError(w)
	}
}
