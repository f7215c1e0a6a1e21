// opds/category.go
package opds

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"absopds/engine"
	"absopds/models"
)

// CategoryHandler обработчик списков авторов, чтецов, жанров и серий
type CategoryHandler struct {
	*BaseHandler
}

// NewCategoryHandler создает новый экземпляр CategoryHandler
func NewCategoryHandler(base *BaseHandler) *CategoryHandler {
	return &CategoryHandler{BaseHandler: base}
}

// ListHandler обрабатывает GET /opds/libraries/{id}/{type}. Без
// параметра start и с включенными карточками букв выдает по карточке на
// букву; иначе карточки значений, ведущие на отфильтрованный фид книг.
func (ch *CategoryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	facet, err := engine.ParseFacet(r.PathValue("type"))
	if err != nil {
		http.Error(w, "Invalid type", http.StatusBadRequest)
		return
	}
	user, ok := ch.currentUser(w, r)
	if !ok {
		return
	}
	libraryID := r.PathValue("id")
	q := engine.ParseQuery(r.URL.Query())

	ctx := r.Context()
	items, err := ch.src.Items(ctx, user, libraryID)
	if err != nil {
		ch.writeSourceError(w, r, "category items", err)
		return
	}
	library, err := ch.src.Library(ctx, user, libraryID)
	if err != nil {
		ch.writeSourceError(w, r, "library", err)
		return
	}

	entries := ch.engine.BuildCategoryListing(items, facet, q)
	log.Debug("Список категории", "library", libraryID, "facet", facet, "start", q.Start, "entries", len(entries))

	self := libraryPath(libraryID) + "/" + facet.String()
	feed := models.NewFeed(libraryFeedID(libraryID), library.Name)
	feed.Icon = library.Icon
	feed.Links = append(feed.Links,
		models.Link{Rel: "self", Type: navigationType, Href: self},
		models.Link{Rel: "start", Type: navigationType, Href: "/opds"},
		models.Link{Rel: "up", Type: navigationType, Href: libraryPath(libraryID) + "?categories=true"},
	)

	for _, e := range entries {
		feed.Entries = append(feed.Entries, ch.categoryCard(libraryID, facet, e))
	}

	RenderOPDSFeed(w, feed, false)
}

func (ch *CategoryHandler) categoryCard(libraryID string, facet engine.Facet, e engine.CategoryEntry) models.Entry {
	if e.IsBucket() {
		title := fmt.Sprintf("%s (%d)", e.Letter, e.Count)
		href := libraryPath(libraryID) + "/" + facet.String() + "?start=" + url.QueryEscape(strings.ToLower(e.Letter))
		return cardEntry(title, href)
	}
	href := libraryPath(libraryID) + "?name=" + url.QueryEscape(e.Value) + "&type=" + facet.String()
	return cardEntry(e.Value, href)
}
