package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	// CreateIfAbsent создает слот, если слота с таким натуральным ключом еще нет
	CreateIfAbsent(ctx context.Context, s *domain.BookingSlot) error
	GetByServiceAndDate(ctx context.Context, serviceID int64, date time.Time) ([]*domain.BookingSlot, error)
}

// AvailabilityRepository интерфейс репозитория рабочих окон
type AvailabilityRepository interface {
	GetActiveWindow(ctx context.Context, providerID int64, weekday int) (*domain.ProviderAvailability, error)
	GetServiceWindows(ctx context.Context, serviceID int64, weekday int) ([]*domain.ServiceTimeSlot, error)
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
