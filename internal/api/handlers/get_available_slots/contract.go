package get_available_slots

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/usecase/get_available_slots"
)

// SlotsUsecase usecase расчёта доступных слотов
type SlotsUsecase interface {
	Execute(ctx context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error)
}

type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
