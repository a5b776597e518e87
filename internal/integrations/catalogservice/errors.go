package catalogservice

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("catalog service not found")

	// ErrProviderNotFound возвращается, когда исполнитель не найден в каталоге
	ErrProviderNotFound = errors.New("catalog provider not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("catalogservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("catalogservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation,
	// когда каталог недоступен и запрос не критичен для целостности данных
	ErrServiceDegraded = errors.New("catalogservice unavailable: graceful degradation applied")
)
