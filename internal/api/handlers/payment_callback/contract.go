package payment_callback

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/usecase/payment_callback"
)

// PaymentCallbackUsecase usecase обработки платёжных уведомлений
type PaymentCallbackUsecase interface {
	Execute(ctx context.Context, req *payment_callback.Request) (*payment_callback.Response, error)
}

type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
