package reschedule_booking

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/usecase/reschedule_booking"
)

// RescheduleUsecase usecase переноса бронирования
type RescheduleUsecase interface {
	Execute(ctx context.Context, req *reschedule_booking.Request) (*reschedule_booking.Response, error)
}

type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
