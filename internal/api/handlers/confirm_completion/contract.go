package confirm_completion

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/deliveries/models"
)

// DeliveryService сервис подтверждения выполнения услуг
type DeliveryService interface {
	ConfirmCompletion(ctx context.Context, bookingID int64, req *models.ConfirmCompletionRequest) error
}

type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
