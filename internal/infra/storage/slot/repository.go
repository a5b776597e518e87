package slot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/psqlbuilder"
)

// slotColumns полный набор колонок таблицы booking_slots
var slotColumns = []string{
	"id",
	"service_id",
	"provider_id",
	"slot_date",
	"start_time",
	"end_time",
	"is_available",
	"max_reservations",
	"current_reservations",
	"tier",
	"rush_fee_percent",
	"base_price_override",
	"provider_note",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы со слотами бронирования.
// Владеет счетчиком резерваций: Reserve/Release - единственные операции,
// мутирующие current_reservations.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateIfAbsent создает слот, если слота с таким натуральным ключом
// (service_id, slot_date, start_time) еще нет. Повторный вызов для существующего
// ключа ничего не меняет - в частности, не сбрасывает счетчик резерваций.
// Это делает генерацию слотов идемпотентной и безопасной при конкурентных вызовах.
func (r *Repository) CreateIfAbsent(ctx context.Context, s *domain.BookingSlot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_slots").
		Columns(
			"service_id",
			"provider_id",
			"slot_date",
			"start_time",
			"end_time",
			"is_available",
			"max_reservations",
			"current_reservations",
			"tier",
			"rush_fee_percent",
			"base_price_override",
			"provider_note",
		).
		Values(
			s.ServiceID,
			s.ProviderID,
			s.SlotDate,
			s.StartTime,
			s.EndTime,
			s.IsAvailable,
			s.MaxReservations,
			s.CurrentReservations,
			s.Tier,
			s.RushFeePercent,
			s.BasePriceOverride,
			s.ProviderNote,
		).
		Suffix("ON CONFLICT (service_id, slot_date, start_time) DO NOTHING").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CreateIfAbsent - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateIfAbsent - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.BookingSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("booking_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	s, err := r.scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return s, nil
}

// GetByServiceAndDate получает все слоты услуги на дату, упорядоченные по времени начала
func (r *Repository) GetByServiceAndDate(ctx context.Context, serviceID int64, date time.Time) ([]*domain.BookingSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("booking_slots").
		Where(squirrel.Eq{"service_id": serviceID, "slot_date": date}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByServiceAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByServiceAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSlots(rows)
}

// GetByServiceAndDateRange получает слоты услуги за период [from, to]
func (r *Repository) GetByServiceAndDateRange(ctx context.Context, serviceID int64, from, to time.Time) ([]*domain.BookingSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("booking_slots").
		Where(squirrel.Eq{"service_id": serviceID}).
		Where(squirrel.GtOrEq{"slot_date": from}).
		Where(squirrel.LtOrEq{"slot_date": to}).
		OrderBy("slot_date ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByServiceAndDateRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByServiceAndDateRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSlots(rows)
}

// Reserve атомарно занимает одно место в слоте.
// Единственный compare-and-increment: условие current_reservations < max_reservations
// проверяется тем же UPDATE, который инкрементирует счетчик, поэтому две
// конкурирующие резервации последнего места не могут пройти обе.
// Возвращает ErrSlotFull, если мест нет, ErrSlotNotFound, если слот не существует.
func (r *Repository) Reserve(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_slots").
		Set("current_reservations", squirrel.Expr("current_reservations + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "is_available": true}).
		Where(squirrel.Expr("current_reservations < max_reservations")).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Reserve - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Reserve - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reserve - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Различаем "слота нет" и "мест нет"
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrSlotFull
	}

	return nil
}

// Release атомарно освобождает одно место в слоте.
// Счетчик не опускается ниже нуля: условие current_reservations > 0 входит
// в тот же UPDATE. Повторный release возвращает ErrNothingReleased.
func (r *Repository) Release(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_slots").
		Set("current_reservations", squirrel.Expr("current_reservations - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("current_reservations > 0")).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrNothingReleased
	}

	return nil
}

// SetAvailability включает или выключает слот для бронирования
func (r *Repository) SetAvailability(ctx context.Context, id int64, isAvailable bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_slots").
		Set("is_available", isAvailable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetAvailability - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetAvailability - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetAvailability - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSlot сканирует одну строку в доменную модель
func (r *Repository) scanSlot(row rowScanner) (*domain.BookingSlot, error) {
	var s domain.BookingSlot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.ServiceID,
		&s.ProviderID,
		&s.SlotDate,
		&s.StartTime,
		&s.EndTime,
		&s.IsAvailable,
		&s.MaxReservations,
		&s.CurrentReservations,
		&s.Tier,
		&s.RushFeePercent,
		&s.BasePriceOverride,
		&s.ProviderNote,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// scanSlots сканирует результаты запроса в слайс слотов
func (r *Repository) scanSlots(rows *sql.Rows) ([]*domain.BookingSlot, error) {
	slots := make([]*domain.BookingSlot, 0)

	for rows.Next() {
		s, err := r.scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}
