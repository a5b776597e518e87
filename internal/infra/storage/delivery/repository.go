package delivery

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/psqlbuilder"
)

// deliveryColumns полный набор колонок таблицы service_deliveries
var deliveryColumns = []string{
	"id",
	"booking_id",
	"delivered_at",
	"delivered_by",
	"notes",
	"photo_refs",
	"customer_confirmed_at",
	"rating",
	"customer_notes",
	"recommend",
	"disputed",
	"dispute_reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий для записей о выполнении услуг и наличных оплатах
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает запись о выполнении или обновляет существующую.
// Повторная отметка выполнения идемпотентна: обновляет метаданные той же записи,
// а не плодит дубликаты (UNIQUE по booking_id).
func (r *Repository) Upsert(ctx context.Context, d *domain.ServiceDelivery) (*domain.ServiceDelivery, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("service_deliveries").
		Columns(
			"booking_id",
			"delivered_at",
			"delivered_by",
			"notes",
			"photo_refs",
		).
		Values(
			d.BookingID,
			d.DeliveredAt,
			d.DeliveredBy,
			d.Notes,
			pq.Array(d.PhotoRefs),
		).
		Suffix(`ON CONFLICT (booking_id) DO UPDATE SET
			delivered_at = EXCLUDED.delivered_at,
			notes = EXCLUDED.notes,
			photo_refs = EXCLUDED.photo_refs,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&d.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time

	return d, nil
}

// GetByBookingID получает запись о выполнении по ID бронирования
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.ServiceDelivery, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(deliveryColumns...).
		From("service_deliveries").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	var d domain.ServiceDelivery
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&d.ID,
		&d.BookingID,
		&d.DeliveredAt,
		&d.DeliveredBy,
		&d.Notes,
		pq.Array(&d.PhotoRefs),
		&d.CustomerConfirmedAt,
		&d.Rating,
		&d.CustomerNotes,
		&d.Recommend,
		&d.Disputed,
		&d.DisputeReason,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrDeliveryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan delivery: %v", ErrScanRow, err)
	}

	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time

	return &d, nil
}

// ConfirmParams данные подтверждения выполнения клиентом
type ConfirmParams struct {
	ConfirmedAt   time.Time
	Rating        int
	CustomerNotes *string
	Recommend     bool
}

// Confirm фиксирует подтверждение выполнения клиентом.
// Мутация однократная: запись с уже проставленным customer_confirmed_at
// не перезаписывается.
func (r *Repository) Confirm(ctx context.Context, bookingID int64, params ConfirmParams) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("service_deliveries").
		Set("customer_confirmed_at", params.ConfirmedAt).
		Set("rating", params.Rating).
		Set("customer_notes", params.CustomerNotes).
		Set("recommend", params.Recommend).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"customer_confirmed_at": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Confirm - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Confirm - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Confirm - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrDeliveryNotFound
	}

	return nil
}

// MarkDisputed помечает запись о выполнении как спорную
func (r *Repository) MarkDisputed(ctx context.Context, bookingID int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("service_deliveries").
		Set("disputed", true).
		Set("dispute_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkDisputed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkDisputed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkDisputed - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrDeliveryNotFound
	}

	return nil
}

// CreateCashCollection создает запись о принятой наличной оплате
func (r *Repository) CreateCashCollection(ctx context.Context, c *domain.CashCollection) (*domain.CashCollection, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("cash_collections").
		Columns(
			"booking_id",
			"provider_id",
			"amount",
			"collected_at",
			"note",
		).
		Values(
			c.BookingID,
			c.ProviderID,
			c.Amount,
			c.CollectedAt,
			c.Note,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateCashCollection - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateCashCollection - execute insert: %v", ErrExecQuery, err)
	}

	c.CreatedAt = createdAt.Time

	return c, nil
}

// GetCashCollections возвращает все наличные оплаты по бронированию
func (r *Repository) GetCashCollections(ctx context.Context, bookingID int64) ([]*domain.CashCollection, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"provider_id",
		"amount",
		"collected_at",
		"note",
		"created_at",
	).
		From("cash_collections").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetCashCollections - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetCashCollections - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	collections := make([]*domain.CashCollection, 0)

	for rows.Next() {
		var c domain.CashCollection
		var createdAt sql.NullTime

		err := rows.Scan(
			&c.ID,
			&c.BookingID,
			&c.ProviderID,
			&c.Amount,
			&c.CollectedAt,
			&c.Note,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetCashCollections - scan row: %v", ErrScanRow, err)
		}

		c.CreatedAt = createdAt.Time
		collections = append(collections, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetCashCollections - rows error: %v", ErrScanRow, err)
	}

	return collections, nil
}
