// opds/auth.go
package opds

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"absopds/abs"
	"absopds/config"
	"absopds/models"
)

var (
	// ErrNoCredentials запрос без Basic-авторизации
	ErrNoCredentials = errors.New("учетные данные не переданы")

	// ErrMisconfigured режим без авторизации включен без учетной записи по умолчанию
	ErrMisconfigured = errors.New("не задана учетная запись для режима без авторизации")
)

type userKey struct{}

// UserFromContext возвращает пользователя, от имени которого выполняется запрос
func UserFromContext(ctx context.Context) (models.InternalUser, bool) {
	user, ok := ctx.Value(userKey{}).(models.InternalUser)
	return user, ok
}

// WithUser сохраняет пользователя в контексте запроса
func WithUser(ctx context.Context, user models.InternalUser) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// Authenticator определяет пользователя запроса
type Authenticator struct {
	upstream       Loginer
	users          []models.InternalUser
	noAuth         bool
	noAuthUsername string
	noAuthPassword string
}

// NewAuthenticator создает Authenticator по настройкам. Внутренние
// пользователи берутся из cfg.Users().
func NewAuthenticator(upstream Loginer, cfg *config.Config) *Authenticator {
	return &Authenticator{
		upstream:       upstream,
		users:          cfg.Users(),
		noAuth:         cfg.NoAuth,
		noAuthUsername: cfg.NoAuthUsername,
		noAuthPassword: cfg.NoAuthPassword,
	}
}

// Authenticate возвращает пользователя запроса. В режиме без авторизации
// выполняется вход под учетной записью по умолчанию. Иначе Basic-учетные
// данные сверяются с внутренними пользователями, затем с сервером.
func (a *Authenticator) Authenticate(r *http.Request) (models.InternalUser, error) {
	ctx := r.Context()

	if a.noAuth {
		if a.noAuthUsername == "" || a.noAuthPassword == "" {
			return models.InternalUser{}, ErrMisconfigured
		}
		user, err := a.upstream.Login(ctx, a.noAuthUsername, a.noAuthPassword)
		if err != nil {
			return models.InternalUser{}, fmt.Errorf("вход под учетной записью по умолчанию: %w", err)
		}
		return user, nil
	}

	username, password, ok := r.BasicAuth()
	if !ok {
		return models.InternalUser{}, ErrNoCredentials
	}

	if user, ok := a.findInternal(username, password); ok {
		log.Debug("Внутренний пользователь авторизован", "user", user.Name)
		return user, nil
	}

	log.Debug("Вход через сервер Audiobookshelf", "user", username)
	user, err := a.upstream.Login(ctx, username, password)
	if err != nil {
		return models.InternalUser{}, err
	}
	return user, nil
}

func (a *Authenticator) findInternal(username, password string) (models.InternalUser, bool) {
	for _, u := range a.users {
		if strings.EqualFold(u.Name, username) &&
			subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1 {
			return u, true
		}
	}
	return models.InternalUser{}, false
}

// Middleware пропускает к next только авторизованные запросы
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.Authenticate(r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		case errors.Is(err, ErrMisconfigured):
			log.Error("Ошибка конфигурации авторизации", "err", err)
			http.Error(w, "Server configuration error", http.StatusInternalServerError)
		default:
			if !errors.Is(err, ErrNoCredentials) && !errors.Is(err, abs.ErrUnauthorized) {
				log.Warn("Ошибка авторизации", "path", r.URL.Path, "err", err)
			}
			challenge(w)
		}
	})
}

func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="OPDS"`)
	http.Error(w, "Authentication required", http.StatusUnauthorized)
}
