package get_reschedule_options

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/usecase/get_reschedule_options"
)

// OptionsUsecase usecase подбора слотов для переноса
type OptionsUsecase interface {
	Execute(ctx context.Context, req *get_reschedule_options.Request) (*get_reschedule_options.Response, error)
}

type Logger interface {
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}
