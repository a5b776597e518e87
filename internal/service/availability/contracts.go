package availability

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
)

// AvailabilityRepository интерфейс репозитория рабочих окон
type AvailabilityRepository interface {
	CreateWindow(ctx context.Context, w *domain.ProviderAvailability) (*domain.ProviderAvailability, error)
	GetWindowsByProvider(ctx context.Context, providerID int64) ([]*domain.ProviderAvailability, error)
	UpdateWindow(ctx context.Context, id int64, w *domain.ProviderAvailability) (*domain.ProviderAvailability, error)
	DeleteWindow(ctx context.Context, id int64) error

	GetServiceWindowByID(ctx context.Context, id int64) (*domain.ServiceTimeSlot, error)
	CreateServiceWindow(ctx context.Context, s *domain.ServiceTimeSlot) (*domain.ServiceTimeSlot, error)
	DeleteServiceWindow(ctx context.Context, id int64) error
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetProvider(ctx context.Context, providerID int64) (*catalogservice.Provider, error)
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
