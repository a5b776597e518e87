package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrSlotNotFound возвращается, когда новый слот не найден
	ErrSlotNotFound = errors.New("slot not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotReschedule возвращается, когда статус бронирования
	// не допускает перенос
	ErrCannotReschedule = errors.New("booking cannot be rescheduled")

	// ErrRescheduleLimitExceeded возвращается при попытке перенести
	// бронирование сверх жесткого лимита переносов
	ErrRescheduleLimitExceeded = errors.New("reschedule limit exceeded")

	// ErrSlotNotAvailable возвращается, когда в новом слоте нет мест
	ErrSlotNotAvailable = errors.New("slot is not available")

	// ErrSlotInPast возвращается при попытке переноса на прошедший слот
	ErrSlotInPast = errors.New("slot is in the past")

	// ErrServiceMismatch возвращается, когда новый слот принадлежит
	// другой услуге
	ErrServiceMismatch = errors.New("slot does not belong to the booking's service")

	// ErrSameSlot возвращается при переносе на тот же слот
	ErrSameSlot = errors.New("booking already holds this slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
