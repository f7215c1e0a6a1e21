package opds

import (
	"context"

	"absopds/models"
)

// Source источник данных каталога (сервер Audiobookshelf или кэш поверх него)
type Source interface {
	Libraries(ctx context.Context, user models.InternalUser) ([]models.Library, error)
	Library(ctx context.Context, user models.InternalUser, libraryID string) (models.Library, error)
	Items(ctx context.Context, user models.InternalUser, libraryID string) ([]models.AbsItem, error)
}

// Loginer проверяет учетные данные на сервере и возвращает пользователя с токеном
type Loginer interface {
	Login(ctx context.Context, username, password string) (models.InternalUser, error)
}

// Localizer переводит заголовки каталога
type Localizer interface {
	Localize(key, acceptLanguage string) string
	Localizef(key, acceptLanguage string, args ...any) string
}
