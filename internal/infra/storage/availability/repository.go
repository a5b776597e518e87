package availability

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/psqlbuilder"
)

// pqUniqueViolation код ошибки PostgreSQL при нарушении уникальности
const pqUniqueViolation = "23505"

// Repository репозиторий для работы с расписанием:
// еженедельными рабочими окнами исполнителей (provider_availability)
// и фиксированными окнами услуг (service_time_slots)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// --- Рабочие окна исполнителя ---

// availabilityColumns колонки таблицы provider_availability
var availabilityColumns = []string{
	"id",
	"provider_id",
	"weekday",
	"start_time",
	"end_time",
	"break_start",
	"break_end",
	"is_active",
	"created_at",
	"updated_at",
}

// CreateWindow создает рабочее окно исполнителя на день недели
func (r *Repository) CreateWindow(ctx context.Context, w *domain.ProviderAvailability) (*domain.ProviderAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("provider_availability").
		Columns(
			"provider_id",
			"weekday",
			"start_time",
			"end_time",
			"break_start",
			"break_end",
			"is_active",
		).
		Values(
			w.ProviderID,
			w.Weekday,
			w.StartTime,
			w.EndTime,
			w.BreakStart,
			w.BreakEnd,
			w.IsActive,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateWindow - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&w.ID, &createdAt, &updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateWindow
		}
		return nil, fmt.Errorf("%w: CreateWindow - execute insert: %v", ErrExecQuery, err)
	}

	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedAt.Time

	return w, nil
}

// GetWindowsByProvider получает все рабочие окна исполнителя
func (r *Repository) GetWindowsByProvider(ctx context.Context, providerID int64) ([]*domain.ProviderAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(availabilityColumns...).
		From("provider_availability").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("weekday ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWindowsByProvider - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWindowsByProvider - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanWindows(rows)
}

// GetActiveWindow получает активное рабочее окно исполнителя на день недели.
// Если окна нет или оно выключено, возвращает ErrAvailabilityNotFound.
func (r *Repository) GetActiveWindow(ctx context.Context, providerID int64, weekday int) (*domain.ProviderAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(availabilityColumns...).
		From("provider_availability").
		Where(squirrel.Eq{"provider_id": providerID, "weekday": weekday, "is_active": true}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveWindow - build select query: %v", ErrBuildQuery, err)
	}

	w, err := r.scanWindow(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveWindow - scan window: %v", ErrScanRow, err)
	}

	return w, nil
}

// UpdateWindow обновляет рабочее окно исполнителя
func (r *Repository) UpdateWindow(ctx context.Context, id int64, w *domain.ProviderAvailability) (*domain.ProviderAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("provider_availability").
		Set("start_time", w.StartTime).
		Set("end_time", w.EndTime).
		Set("break_start", w.BreakStart).
		Set("break_end", w.BreakEnd).
		Set("is_active", w.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdateWindow - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateWindow - execute update: %v", ErrExecQuery, err)
	}

	w.ID = id
	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedAt.Time

	return w, nil
}

// DeleteWindow удаляет рабочее окно исполнителя
func (r *Repository) DeleteWindow(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("provider_availability").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteWindow - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteWindow - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteWindow - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAvailabilityNotFound
	}

	return nil
}

// --- Фиксированные окна услуг ---

// serviceSlotColumns колонки таблицы service_time_slots
var serviceSlotColumns = []string{
	"id",
	"service_id",
	"weekday",
	"start_time",
	"end_time",
	"max_bookings",
	"is_peak",
	"price_override",
	"created_at",
	"updated_at",
}

// GetServiceWindows получает фиксированные окна услуги на день недели.
// Пустой результат означает, что на этот день окон-переопределений нет
// и генерация должна идти от рабочих окон исполнителя.
func (r *Repository) GetServiceWindows(ctx context.Context, serviceID int64, weekday int) ([]*domain.ServiceTimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceSlotColumns...).
		From("service_time_slots").
		Where(squirrel.Eq{"service_id": serviceID, "weekday": weekday}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceWindows - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceWindows - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanServiceWindows(rows)
}

// GetServiceWindowByID получает фиксированное окно услуги по ID
func (r *Repository) GetServiceWindowByID(ctx context.Context, id int64) (*domain.ServiceTimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceSlotColumns...).
		From("service_time_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceWindowByID - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.ServiceTimeSlot
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.ServiceID,
		&s.Weekday,
		&s.StartTime,
		&s.EndTime,
		&s.MaxBookings,
		&s.IsPeak,
		&s.PriceOverride,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceWindowByID - scan row: %v", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// CreateServiceWindow создает фиксированное окно услуги
func (r *Repository) CreateServiceWindow(ctx context.Context, s *domain.ServiceTimeSlot) (*domain.ServiceTimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("service_time_slots").
		Columns(
			"service_id",
			"weekday",
			"start_time",
			"end_time",
			"max_bookings",
			"is_peak",
			"price_override",
		).
		Values(
			s.ServiceID,
			s.Weekday,
			s.StartTime,
			s.EndTime,
			s.MaxBookings,
			s.IsPeak,
			s.PriceOverride,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateServiceWindow - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &createdAt, &updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateWindow
		}
		return nil, fmt.Errorf("%w: CreateServiceWindow - execute insert: %v", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}

// DeleteServiceWindow удаляет фиксированное окно услуги
func (r *Repository) DeleteServiceWindow(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("service_time_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteServiceWindow - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteServiceWindow - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteServiceWindow - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAvailabilityNotFound
	}

	return nil
}

// --- Scan helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanWindow(row rowScanner) (*domain.ProviderAvailability, error) {
	var w domain.ProviderAvailability
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&w.ID,
		&w.ProviderID,
		&w.Weekday,
		&w.StartTime,
		&w.EndTime,
		&w.BreakStart,
		&w.BreakEnd,
		&w.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedAt.Time

	return &w, nil
}

func (r *Repository) scanWindows(rows *sql.Rows) ([]*domain.ProviderAvailability, error) {
	windows := make([]*domain.ProviderAvailability, 0)

	for rows.Next() {
		w, err := r.scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanWindows - scan row: %v", ErrScanRow, err)
		}
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanWindows - rows error: %v", ErrScanRow, err)
	}

	return windows, nil
}

func (r *Repository) scanServiceWindows(rows *sql.Rows) ([]*domain.ServiceTimeSlot, error) {
	windows := make([]*domain.ServiceTimeSlot, 0)

	for rows.Next() {
		var s domain.ServiceTimeSlot
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&s.ID,
			&s.ServiceID,
			&s.Weekday,
			&s.StartTime,
			&s.EndTime,
			&s.MaxBookings,
			&s.IsPeak,
			&s.PriceOverride,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanServiceWindows - scan row: %v", ErrScanRow, err)
		}

		s.CreatedAt = createdAt.Time
		s.UpdatedAt = updatedAt.Time

		windows = append(windows, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanServiceWindows - rows error: %v", ErrScanRow, err)
	}

	return windows, nil
}

// isUniqueViolation проверяет, что ошибка - нарушение уникального индекса
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}
