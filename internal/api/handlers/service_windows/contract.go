package service_windows

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/availability/models"
)

// AvailabilityService сервис управления рабочими окнами исполнителей
type AvailabilityService interface {
	CreateServiceWindow(ctx context.Context, serviceID int64, req *models.ServiceWindowRequest) (*models.ServiceWindowResponse, error)
	DeleteServiceWindow(ctx context.Context, serviceID, windowID int64, req *models.DeleteRequest) error
}

type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
