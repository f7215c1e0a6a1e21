package opds

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_LetterCards(t *testing.T) {
	cfg := testConfig()
	cfg.ShowCharCards = true
	h := newTestServer(t, newTestSource(), cfg, 10)

	rec := get(t, h, "/opds/libraries/lib1/authors", true)

	require.Equal(t, http.StatusOK, rec.Code)
	feed := parseFeed(t, rec)
	assert.Equal(t, []string{"E (2)", "F (1)", "G (1)", "J (1)"}, entryTitles(feed))
	assert.Equal(t, "/opds/libraries/lib1/authors?start=e", feed.Entries[0].Links[0].Href)
}

func TestCategory_ValuesByLetter(t *testing.T) {
	cfg := testConfig()
	cfg.ShowCharCards = true
	h := newTestServer(t, newTestSource(), cfg, 10)

	rec := get(t, h, "/opds/libraries/lib1/authors?start=e", true)

	require.Equal(t, http.StatusOK, rec.Code)
	feed := parseFeed(t, rec)
	assert.Equal(t, []string{"Ernest Hemingway", "Émile Zola"}, entryTitles(feed))
	assert.Equal(t, "/opds/libraries/lib1?name=%C3%89mile+Zola&type=authors", feed.Entries[1].Links[0].Href)
}

func TestCategory_AllValuesWithoutCards(t *testing.T) {
	h := newTestServer(t, newTestSource(), testConfig(), 10)

	rec := get(t, h, "/opds/libraries/lib1/genres", true)

	require.Equal(t, http.StatusOK, rec.Code)
	feed := parseFeed(t, rec)
	assert.Equal(t, []string{"Fantasy"}, entryTitles(feed))
	assert.NotEqual(t, feed.Entries[0].ID, "")
}

func TestCategory_StableCardIDs(t *testing.T) {
	a := cardEntry("Fantasy", "/opds/libraries/lib1?name=Fantasy&type=genres")
	b := cardEntry("Fantasy", "/opds/libraries/lib1?name=Fantasy&type=genres")
	c := cardEntry("Fantasy", "/opds/libraries/lib2?name=Fantasy&type=genres")

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestCategory_UnknownType(t *testing.T) {
	h := newTestServer(t, newTestSource(), testConfig(), 10)

	rec := get(t, h, "/opds/libraries/lib1/publishers", true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategory_FilterRouteIgnoresUnknownType(t *testing.T) {
	h := newTestServer(t, newTestSource(), testConfig(), 10)

	rec := get(t, h, "/opds/libraries/lib1?type=publishers&name=x", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, parseFeed(t, rec).Entries, 5)
}
