package get_reschedule_history

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/usecase/reschedule_booking"
)

// RescheduleUsecase usecase переноса бронирования
type RescheduleUsecase interface {
	GetHistory(ctx context.Context, bookingID, userID int64) (*reschedule_booking.HistoryResponse, error)
}

type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
