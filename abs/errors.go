package abs

import "errors"

var (
	// ErrUpstream сервер Audiobookshelf недоступен или вернул некорректный ответ
	ErrUpstream = errors.New("ошибка сервера Audiobookshelf")

	// ErrUnauthorized сервер отклонил учетные данные
	ErrUnauthorized = errors.New("неверные учетные данные")
)
