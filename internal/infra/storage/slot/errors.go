package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrSlotFull возвращается, когда все места в слоте заняты.
	// Это штатный исход гонки за последнее место, а не внутренняя ошибка.
	ErrSlotFull = errors.New("slot.repository: slot is fully booked")

	// ErrNothingReleased возвращается, когда освобождать нечего: счетчик уже ноль.
	// Сигнализирует о двойном release - вызывающий обязан громко залогировать.
	ErrNothingReleased = errors.New("slot.repository: no reservations to release")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
