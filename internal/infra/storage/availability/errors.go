package availability

import "errors"

var (
	// ErrAvailabilityNotFound возвращается, когда рабочее окно не найдено
	ErrAvailabilityNotFound = errors.New("availability.repository: availability not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("availability.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("availability.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("availability.repository: failed to scan row")

	// ErrDuplicateWindow возвращается при попытке создать второе окно
	// на тот же день недели
	ErrDuplicateWindow = errors.New("availability.repository: duplicate window for weekday")
)
