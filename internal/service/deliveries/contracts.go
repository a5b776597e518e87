package deliveries

import (
	"context"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/delivery"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, step domain.BookingStep) error
}

// DeliveryRepository интерфейс репозитория записей о выполнении услуг
type DeliveryRepository interface {
	Upsert(ctx context.Context, d *domain.ServiceDelivery) (*domain.ServiceDelivery, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.ServiceDelivery, error)
	Confirm(ctx context.Context, bookingID int64, params delivery.ConfirmParams) error
	MarkDisputed(ctx context.Context, bookingID int64, reason string) error
	CreateCashCollection(ctx context.Context, c *domain.CashCollection) (*domain.CashCollection, error)
	GetCashCollections(ctx context.Context, bookingID int64) ([]*domain.CashCollection, error)
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetProvider(ctx context.Context, providerID int64) (*catalogservice.Provider, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
