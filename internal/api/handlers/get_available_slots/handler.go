package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	usecase "github.com/m04kA/SMC-MarketplaceService/internal/usecase/get_available_slots"
)

const (
	msgInvalidServiceID  = "некорректный ID услуги"
	msgMissingDate       = "параметр date обязателен"
	msgInvalidDate       = "некорректная дата, ожидается формат YYYY-MM-DD"
	msgDateTooFar        = "дата слишком далеко в будущем"
	msgServiceNotFound   = "услуга не найдена"
	msgServiceInactive   = "услуга недоступна для бронирования"
)

type Handler struct {
	usecase SlotsUsecase
	logger  Logger
}

func NewHandler(uc SlotsUsecase, logger Logger) *Handler {
	return &Handler{
		usecase: uc,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/slots?date=YYYY-MM-DD&browseOnly=true
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /services/{id}/slots - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	rawDate := r.URL.Query().Get("date")
	if rawDate == "" {
		h.logger.Warn("GET /services/{id}/slots - Missing date: service_id=%d", serviceID)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, rawDate)
	if err != nil {
		h.logger.Warn("GET /services/{id}/slots - Invalid date %q: service_id=%d", rawDate, serviceID)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	browseOnly := r.URL.Query().Get("browseOnly") == "true"

	// Просмотр слотов доступен и анонимно, user_id опционален.
	userID, _ := middleware.GetUserID(r.Context())

	resp, err := h.usecase.Execute(r.Context(), &usecase.Request{
		UserID:     userID,
		ServiceID:  serviceID,
		Date:       date,
		BrowseOnly: browseOnly,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrServiceNotFound):
			h.logger.Warn("GET /services/{id}/slots - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, usecase.ErrServiceInactive):
			h.logger.Warn("GET /services/{id}/slots - Service inactive: service_id=%d", serviceID)
			handlers.RespondConflict(w, msgServiceInactive)

		case errors.Is(err, usecase.ErrInvalidDate):
			h.logger.Warn("GET /services/{id}/slots - Invalid date %q: service_id=%d", rawDate, serviceID)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, usecase.ErrDateTooFarInFuture):
			h.logger.Warn("GET /services/{id}/slots - Date too far %q: service_id=%d", rawDate, serviceID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, usecase.ErrInvalidInput):
			h.logger.Warn("GET /services/{id}/slots - Invalid input: service_id=%d, error=%v", serviceID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /services/{id}/slots - Failed to get slots: service_id=%d, date=%s, error=%v",
				serviceID, rawDate, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /services/{id}/slots - Slots returned: service_id=%d, date=%s, count=%d",
		serviceID, rawDate, len(resp.Slots))
	handlers.RespondJSON(w, http.StatusOK, resp)
}
