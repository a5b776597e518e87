package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// validateRequest проверяет входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDate)
	}

	today := truncateToDay(now)
	date := truncateToDay(req.Date)

	if date.Before(today) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidDate)
	}
	if date.After(today.AddDate(0, 0, domain.AdvanceBookingDays)) {
		return fmt.Errorf("%w: horizon is %d days", ErrDateTooFarInFuture, domain.AdvanceBookingDays)
	}

	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
