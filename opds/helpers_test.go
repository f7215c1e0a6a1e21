package opds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mmcdole/gofeed/atom"
	"github.com/stretchr/testify/require"

	"absopds/abs"
	"absopds/config"
	"absopds/engine"
	"absopds/i18n"
	"absopds/models"
)

type fakeSource struct {
	libraries []models.Library
	items     map[string][]models.AbsItem
	err       error
	logins    map[string]string // имя -> пароль
	loginErr  error
}

func (f *fakeSource) Libraries(ctx context.Context, user models.InternalUser) ([]models.Library, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.libraries, nil
}

func (f *fakeSource) Library(ctx context.Context, user models.InternalUser, libraryID string) (models.Library, error) {
	if f.err != nil {
		return models.Library{}, f.err
	}
	for _, l := range f.libraries {
		if l.ID == libraryID {
			return l, nil
		}
	}
	return models.Library{}, errors.Join(abs.ErrUpstream, errors.New("not found"))
}

func (f *fakeSource) Items(ctx context.Context, user models.InternalUser, libraryID string) ([]models.AbsItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[libraryID], nil
}

func (f *fakeSource) Login(ctx context.Context, username, password string) (models.InternalUser, error) {
	if f.loginErr != nil {
		return models.InternalUser{}, f.loginErr
	}
	if pw, ok := f.logins[username]; ok && pw == password {
		return models.InternalUser{Name: username, APIKey: "tok-" + username}, nil
	}
	return models.InternalUser{}, abs.ErrUnauthorized
}

func item(id, title, author string, mutate ...func(*models.AbsItem)) models.AbsItem {
	it := models.AbsItem{ID: id}
	it.Media.Metadata.Title = title
	it.Media.Metadata.AuthorName = author
	it.Media.EbookFormat = "epub"
	for _, m := range mutate {
		m(&it)
	}
	return it
}

func newTestSource() *fakeSource {
	return &fakeSource{
		libraries: []models.Library{
			{ID: "lib1", Name: "Books"},
			{ID: "lib2", Name: "Audio"},
		},
		items: map[string][]models.AbsItem{
			"lib1": {
				item("1", "The Hobbit", "J.R.R. Tolkien", func(i *models.AbsItem) {
					i.Media.Metadata.Genres = []string{"Fantasy"}
					i.Media.Metadata.Description = "There and back again"
				}),
				item("2", "LOTR", "J.R.R. Tolkien"),
				item("3", "1984", "George Orwell"),
				item("4", "Germinal", "Émile Zola"),
				item("5", "Fiesta", "Ernest Hemingway", func(i *models.AbsItem) {
					i.Media.EbookFormat = "pdf"
				}),
				item("6", "Dune (audio)", "Frank Herbert", func(i *models.AbsItem) {
					i.Media.EbookFormat = ""
				}),
			},
		},
		logins: map[string]string{"bob": "bobpw"},
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.ABSURL = "http://abs.local"
	cfg.OPDSUsers = "alice:key-alice:pw"
	cfg.ParseUsers()
	return cfg
}

func newTestServer(t *testing.T, src *fakeSource, cfg *config.Config, pageSize int) http.Handler {
	t.Helper()
	bundle, err := i18n.Load("")
	require.NoError(t, err)

	eng := engine.New(engine.Options{
		PageSize:     pageSize,
		ShowNonEbook: cfg.ShowAudiobooks,
		Bucketing:    cfg.ShowCharCards,
	})
	base := NewBaseHandler(src, eng, cfg, bundle)
	h := NewHandlers(base, NewAuthenticator(src, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRouter(ctx, h, cfg)
}

func get(t *testing.T, h http.Handler, target string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if auth {
		req.SetBasicAuth("alice", "pw")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func parseFeed(t *testing.T, rec *httptest.ResponseRecorder) *atom.Feed {
	t.Helper()
	fp := &atom.Parser{}
	feed, err := fp.Parse(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return feed
}

func entryTitles(feed *atom.Feed) []string {
	titles := make([]string, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		titles = append(titles, e.Title)
	}
	return titles
}

func linkByRel(links []*atom.Link, rel string) *atom.Link {
	for _, l := range links {
		if l.Rel == rel {
			return l
		}
	}
	return nil
}
