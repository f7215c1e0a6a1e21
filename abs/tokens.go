package abs

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultTokenTTL время жизни токена в кэше
const DefaultTokenTTL = 10 * time.Minute

type cachedToken struct {
	token   string
	expires time.Time
}

// TokenCache кэш токенов, полученных при входе пользователей
type TokenCache struct {
	mu     sync.RWMutex
	tokens map[uint64]cachedToken
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCache создает кэш с заданным временем жизни записей
func NewTokenCache(ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCache{
		tokens: make(map[uint64]cachedToken),
		ttl:    ttl,
		now:    time.Now,
	}
}

// credentialKey ключ записи: токен выдается только при совпадении и имени, и пароля
func credentialKey(username, password string) uint64 {
	return xxhash.Sum64String(username + "\x00" + password)
}

// Get возвращает действующий токен для пары имя/пароль
func (c *TokenCache) Get(username, password string) (string, bool) {
	c.mu.RLock()
	t, ok := c.tokens[credentialKey(username, password)]
	c.mu.RUnlock()

	if !ok || !c.now().Before(t.expires) {
		return "", false
	}
	return t.token, true
}

// Put сохраняет токен, полученный при входе с именем username и паролем password
func (c *TokenCache) Put(username, password, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[credentialKey(username, password)] = cachedToken{token: token, expires: c.now().Add(c.ttl)}
}

// Purge удаляет просроченные токены
func (c *TokenCache) Purge() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, t := range c.tokens {
		if !now.Before(t.expires) {
			delete(c.tokens, key)
			removed++
		}
	}
	return removed
}
