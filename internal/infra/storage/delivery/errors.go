package delivery

import "errors"

var (
	// ErrDeliveryNotFound возвращается, когда запись о выполнении не найдена.
	// На фазе подтверждения означает, что исполнитель пропустил фазу 1.
	ErrDeliveryNotFound = errors.New("delivery.repository: service delivery not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("delivery.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("delivery.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("delivery.repository: failed to scan row")
)
