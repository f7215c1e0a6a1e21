package abs

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*CachedSource, *fakeABS, *time.Time) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, EnsureCacheSchema(db))

	client, fake := newTestClient(t)
	now := time.Unix(1_700_000_000, 0)
	s := NewCachedSource(client, db, ttl)
	s.now = func() time.Time { return now }
	return s, fake, &now
}

func TestCachedSource_ServesFreshEntries(t *testing.T) {
	s, fake, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	first, err := s.Items(ctx, alice, "lib1")
	require.NoError(t, err)
	second, err := s.Items(ctx, alice, "lib1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, fake.items.Load())
}

func TestCachedSource_RefetchesAfterTTL(t *testing.T) {
	s, fake, now := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, err := s.Items(ctx, alice, "lib1")
	require.NoError(t, err)
	*now = now.Add(2 * time.Minute)
	_, err = s.Items(ctx, alice, "lib1")
	require.NoError(t, err)

	assert.EqualValues(t, 2, fake.items.Load())
}

func TestCachedSource_SeparatesUsers(t *testing.T) {
	s, fake, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	bob := alice
	bob.Name = "bob"

	_, err := s.Items(ctx, alice, "lib1")
	require.NoError(t, err)
	_, err = s.Items(ctx, bob, "lib1")
	require.NoError(t, err)

	assert.EqualValues(t, 2, fake.items.Load())
	assert.NotEqual(t, userKey(alice), userKey(bob))
}

func TestCachedSource_DoesNotMaskUpstreamFailure(t *testing.T) {
	s, fake, now := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, err := s.Items(ctx, alice, "lib1")
	require.NoError(t, err)

	*now = now.Add(time.Hour)
	fake.fail.Store(true)
	_, err = s.Items(ctx, alice, "lib1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCachedSource_Purge(t *testing.T) {
	s, _, now := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, err := s.Items(ctx, alice, "lib1")
	require.NoError(t, err)

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	*now = now.Add(time.Hour)
	n, err = s.Purge(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
