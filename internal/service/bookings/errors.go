package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrProviderNotFound возвращается, когда исполнитель не найден в каталоге
	ErrProviderNotFound = errors.New("provider not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotCancel возвращается, когда бронирование не может быть отменено
	ErrCannotCancel = errors.New("booking cannot be cancelled")

	// ErrInvalidStatus возвращается при статусе вне допустимого множества
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInternalStatus возвращается при попытке выставить системный статус
	// прямым запросом на смену статуса
	ErrInternalStatus = errors.New("status is internal and cannot be set directly")

	// ErrProtocolOnly возвращается при попытке перевести бронирование в completed
	// или service_delivered напрямую, минуя протокол подтверждения выполнения
	ErrProtocolOnly = errors.New("status can only be reached through the delivery confirmation flow")

	// ErrInvalidTransition возвращается при переходе, запрещенном таблицей переходов
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrReasonRequired возвращается, когда для перехода обязательна причина
	ErrReasonRequired = errors.New("reason is required for this status change")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
