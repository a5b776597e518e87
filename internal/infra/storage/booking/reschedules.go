package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/psqlbuilder"
)

// История переносов. Append-only: записи никогда не обновляются и не удаляются,
// лимит длины обеспечивает reschedule usecase через CountReschedules.

// AppendRescheduleEntry добавляет неизменяемую запись в историю переносов
func (r *Repository) AppendRescheduleEntry(ctx context.Context, entry *domain.RescheduleEntry) (*domain.RescheduleEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_reschedules").
		Columns(
			"booking_id",
			"reason",
			"old_date",
			"old_start_time",
			"new_date",
			"new_start_time",
			"price_difference",
		).
		Values(
			entry.BookingID,
			entry.Reason,
			entry.OldDate,
			entry.OldStartTime,
			entry.NewDate,
			entry.NewStartTime,
			entry.PriceDifference,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: AppendRescheduleEntry - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: AppendRescheduleEntry - execute insert: %v", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time

	return entry, nil
}

// CountReschedules возвращает количество переносов бронирования
func (r *Repository) CountReschedules(ctx context.Context, bookingID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("booking_reschedules").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountReschedules - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountReschedules - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// GetRescheduleHistory возвращает историю переносов бронирования в порядке добавления
func (r *Repository) GetRescheduleHistory(ctx context.Context, bookingID int64) ([]*domain.RescheduleEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"reason",
		"old_date",
		"old_start_time",
		"new_date",
		"new_start_time",
		"price_difference",
		"created_at",
	).
		From("booking_reschedules").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRescheduleHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetRescheduleHistory - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.RescheduleEntry, 0)

	for rows.Next() {
		var entry domain.RescheduleEntry
		var createdAt sql.NullTime

		err := rows.Scan(
			&entry.ID,
			&entry.BookingID,
			&entry.Reason,
			&entry.OldDate,
			&entry.OldStartTime,
			&entry.NewDate,
			&entry.NewStartTime,
			&entry.PriceDifference,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetRescheduleHistory - scan row: %v", ErrScanRow, err)
		}

		entry.CreatedAt = createdAt.Time
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetRescheduleHistory - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
