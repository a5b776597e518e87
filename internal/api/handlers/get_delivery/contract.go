package get_delivery

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/deliveries/models"
)

// DeliveryService сервис подтверждения выполнения услуг
type DeliveryService interface {
	GetDelivery(ctx context.Context, bookingID int64, userID int64) (*models.DeliveryResponse, *models.CashCollectionListResponse, error)
}

type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
