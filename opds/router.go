// opds/router.go
package opds

import (
	"context"
	"net/http"

	"absopds/config"
)

// Handlers обработчики OPDS каталога
type Handlers struct {
	Catalog  *CatalogHandler
	Category *CategoryHandler
	Auth     *Authenticator
}

// NewHandlers создает обработчики поверх общих зависимостей
func NewHandlers(base *BaseHandler, auth *Authenticator) *Handlers {
	return &Handlers{
		Catalog:  NewCatalogHandler(base),
		Category: NewCategoryHandler(base),
		Auth:     auth,
	}
}

// NewRouter регистрирует маршруты каталога. Описание поиска доступно без
// авторизации, остальные маршруты требуют ее. При rate_limit_rps > 0
// включается ограничение частоты запросов.
func NewRouter(ctx context.Context, h *Handlers, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()
	protect := func(fn http.HandlerFunc) http.Handler {
		return h.Auth.Middleware(fn)
	}

	mux.Handle("GET /opds", protect(h.Catalog.RootHandler))
	mux.Handle("GET /opds/{$}", protect(h.Catalog.RootHandler))
	mux.Handle("GET /opds/libraries/{id}", protect(h.Catalog.LibraryHandler))
	mux.HandleFunc("GET /opds/libraries/{id}/search-definition", h.Catalog.SearchDefinitionHandler)
	mux.Handle("GET /opds/libraries/{id}/{type}", protect(h.Category.ListHandler))

	var handler http.Handler = mux
	if cfg != nil && cfg.RateLimitRPS > 0 {
		handler = NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware(handler)
	}
	return RequestLogger(handler)
}
