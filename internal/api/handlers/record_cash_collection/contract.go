package record_cash_collection

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/deliveries/models"
)

// DeliveryService сервис подтверждения выполнения услуг
type DeliveryService interface {
	RecordCashCollection(ctx context.Context, bookingID int64, req *models.RecordCashCollectionRequest) (*models.CashCollectionResponse, error)
}

type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
