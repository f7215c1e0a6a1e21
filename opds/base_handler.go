package opds

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"absopds/abs"
	"absopds/config"
	"absopds/engine"
	"absopds/models"
)

// BaseHandler общие зависимости OPDS обработчиков
type BaseHandler struct {
	src    Source
	engine *engine.Engine
	cfg    *config.Config
	i18n   Localizer
}

// NewBaseHandler создает новый экземпляр BaseHandler
func NewBaseHandler(src Source, eng *engine.Engine, cfg *config.Config, i18n Localizer) *BaseHandler {
	return &BaseHandler{
		src:    src,
		engine: eng,
		cfg:    cfg,
		i18n:   i18n,
	}
}

// LinkURL адрес сервера для ссылок на скачивание и обложки
func (bh *BaseHandler) LinkURL() string {
	if bh.cfg == nil {
		return config.DefaultABSURL
	}
	return bh.cfg.ABSURL
}

// CatalogTitle название каталога
func (bh *BaseHandler) CatalogTitle() string {
	if bh.cfg == nil || bh.cfg.CatalogTitle == "" {
		return config.DefaultCatalogTitle
	}
	return bh.cfg.CatalogTitle
}

// Localize переводит key на язык клиента
func (bh *BaseHandler) Localize(r *http.Request, key string) string {
	return bh.i18n.Localize(key, r.Header.Get("Accept-Language"))
}

// currentUser возвращает пользователя, установленного Authenticator
func (bh *BaseHandler) currentUser(w http.ResponseWriter, r *http.Request) (models.InternalUser, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		challenge(w)
		return models.InternalUser{}, false
	}
	return user, true
}

// writeSourceError отвечает клиенту по ошибке источника данных
func (bh *BaseHandler) writeSourceError(w http.ResponseWriter, r *http.Request, what string, err error) {
	if errors.Is(err, abs.ErrUnauthorized) {
		log.Warn("Сервер отклонил токен пользователя", "path", r.URL.Path, "err", err)
		challenge(w)
		return
	}
	log.Error("Ошибка получения данных", "what", what, "path", r.URL.Path, "err", err)
	http.Error(w, "Failed to fetch "+what, http.StatusInternalServerError)
}
