package provider_availability

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/availability/models"
)

// AvailabilityService сервис управления рабочими окнами исполнителей
type AvailabilityService interface {
	ListWindows(ctx context.Context, providerID int64) (*models.WindowListResponse, error)
	CreateWindow(ctx context.Context, providerID int64, req *models.WindowRequest) (*models.WindowResponse, error)
	UpdateWindow(ctx context.Context, providerID, windowID int64, req *models.WindowRequest) (*models.WindowResponse, error)
	DeleteWindow(ctx context.Context, providerID, windowID int64, req *models.DeleteRequest) error
}

type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
