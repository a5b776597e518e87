package get_reschedule_options

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotReschedule возвращается, когда статус бронирования
	// не допускает перенос
	ErrCannotReschedule = errors.New("booking cannot be rescheduled")

	// ErrRescheduleLimitExceeded возвращается, когда лимит переносов исчерпан
	ErrRescheduleLimitExceeded = errors.New("reschedule limit exceeded")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
