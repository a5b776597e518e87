package deliveries

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDeliveryNotFound возвращается, когда запись о выполнении не найдена.
	// При подтверждении клиентом означает, что исполнитель не отметил выполнение.
	ErrDeliveryNotFound = errors.New("service delivery record not found")

	// ErrProviderNotFound возвращается, когда исполнитель не найден в каталоге
	ErrProviderNotFound = errors.New("provider not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrNotConfirmedBooking возвращается при попытке отметить выполнение
	// бронирования, которое не находится в статусе confirmed
	ErrNotConfirmedBooking = errors.New("booking is not in confirmed status")

	// ErrNotDelivered возвращается при попытке подтвердить выполнение
	// бронирования, которое исполнитель ещё не отметил выполненным
	ErrNotDelivered = errors.New("booking is not marked as delivered")

	// ErrTooEarly возвращается при попытке отметить выполнение раньше
	// запланированного времени начала услуги
	ErrTooEarly = errors.New("service cannot be marked delivered before its scheduled start")

	// ErrAlreadyConfirmed возвращается при повторном подтверждении выполнения
	ErrAlreadyConfirmed = errors.New("delivery is already confirmed by the customer")

	// ErrInvalidRating возвращается при оценке вне диапазона 1-5
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrAmountMismatch возвращается, когда принятая наличная сумма
	// не совпадает с полной стоимостью бронирования
	ErrAmountMismatch = errors.New("collected amount does not match booking total")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
