// abs/cache.go
package abs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"

	"absopds/models"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS item_cache (
    user_key TEXT NOT NULL,       -- xxhash от имени и ключа пользователя
    library_id TEXT NOT NULL,
    payload BLOB NOT NULL,        -- ответ /api/libraries/{id}/items как есть
    fetched_at INTEGER NOT NULL,  -- UNIX timestamp
    PRIMARY KEY (user_key, library_id)
);
`

// EnsureCacheSchema создает таблицу кэша записей, если ее нет
func EnsureCacheSchema(db *sql.DB) error {
	if _, err := db.Exec(cacheSchema); err != nil {
		return fmt.Errorf("failed to create item cache schema: %w", err)
	}
	return nil
}

// CachedSource клиент, сохраняющий списки записей библиотек в SQLite.
// Остальные запросы передаются клиенту без изменений.
type CachedSource struct {
	*Client
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewCachedSource оборачивает клиент кэшем с временем жизни ttl
func NewCachedSource(client *Client, db *sql.DB, ttl time.Duration) *CachedSource {
	return &CachedSource{Client: client, db: db, ttl: ttl, now: time.Now}
}

// Items возвращает записи библиотеки из кэша или с сервера.
// Ошибки кэша только логируются; устаревшие данные при ошибке сервера не отдаются.
func (s *CachedSource) Items(ctx context.Context, user models.InternalUser, libraryID string) ([]models.AbsItem, error) {
	key := userKey(user)

	raw, err := s.lookup(ctx, key, libraryID)
	switch {
	case err == nil:
		items, decodeErr := DecodeItems(raw)
		if decodeErr == nil {
			log.Debug("Кэш: попадание", "library", libraryID, "items", len(items))
			return items, nil
		}
		log.Warn("Кэш: поврежденная запись", "library", libraryID, "err", decodeErr)
	case !errors.Is(err, sql.ErrNoRows):
		log.Warn("Кэш: ошибка чтения", "library", libraryID, "err", err)
	}

	raw, err = s.Client.ItemsRaw(ctx, user, libraryID)
	if err != nil {
		return nil, err
	}
	items, err := DecodeItems(raw)
	if err != nil {
		return nil, err
	}

	if err := s.store(ctx, key, libraryID, raw); err != nil {
		log.Warn("Кэш: ошибка записи", "library", libraryID, "err", err)
	}
	return items, nil
}

// Purge удаляет просроченные записи кэша
func (s *CachedSource) Purge(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM item_cache WHERE fetched_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge item cache: %w", err)
	}
	return res.RowsAffected()
}

func (s *CachedSource) lookup(ctx context.Context, key, libraryID string) ([]byte, error) {
	var (
		payload   []byte
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM item_cache WHERE user_key = ? AND library_id = ?`,
		key, libraryID,
	).Scan(&payload, &fetchedAt)
	if err != nil {
		return nil, err
	}
	if !s.now().Before(time.Unix(fetchedAt, 0).Add(s.ttl)) {
		return nil, sql.ErrNoRows
	}
	return payload, nil
}

func (s *CachedSource) store(ctx context.Context, key, libraryID string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO item_cache (user_key, library_id, payload, fetched_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(user_key, library_id) DO UPDATE SET
            payload = excluded.payload,
            fetched_at = excluded.fetched_at`,
		key, libraryID, payload, s.now().Unix(),
	)
	return err
}

// userKey ключ пользователя в кэше; сам ключ API в базу не попадает
func userKey(user models.InternalUser) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(user.Name+"\x00"+user.APIKey))
}
