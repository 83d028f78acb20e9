package identityservice

import "errors"

var (
	// ErrUnauthenticated возвращается, когда токен отсутствует, истёк или не распознан
	ErrUnauthenticated = errors.New("identityservice client: unauthenticated")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("identityservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("identityservice client: invalid response")
)
