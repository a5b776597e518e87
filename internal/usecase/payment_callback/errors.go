package payment_callback

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAmountMismatch возвращается, когда сумма платежа не совпадает
	// с полной стоимостью бронирования
	ErrAmountMismatch = errors.New("payment amount does not match booking total")

	// ErrUnexpectedStatus возвращается, когда бронирование не ожидает оплату
	ErrUnexpectedStatus = errors.New("booking is not awaiting payment")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
