package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/psqlbuilder"
)

// RecordPaymentEvent фиксирует событие платежного провайдера.
// Идемпотентность по event_id: повторная доставка того же события
// возвращает inserted=false и не создает дубликат.
func (r *Repository) RecordPaymentEvent(ctx context.Context, eventID uuid.UUID, bookingID int64, amount float64, status string) (inserted bool, err error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payment_events").
		Columns(
			"event_id",
			"booking_id",
			"amount",
			"status",
		).
		Values(
			eventID,
			bookingID,
			amount,
			status,
		).
		Suffix("ON CONFLICT (event_id) DO NOTHING").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: RecordPaymentEvent - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: RecordPaymentEvent - execute insert: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: RecordPaymentEvent - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}
