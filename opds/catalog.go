// opds/catalog.go
package opds

import (
	"net/http"

	"github.com/charmbracelet/log"

	"absopds/engine"
	"absopds/models"
)

// CatalogHandler обработчик списка библиотек и фидов библиотеки
type CatalogHandler struct {
	*BaseHandler
}

// NewCatalogHandler создает новый экземпляр CatalogHandler
func NewCatalogHandler(base *BaseHandler) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base}
}

// RootHandler обрабатывает GET /opds: список библиотек пользователя.
// Единственная библиотека открывается сразу.
func (ch *CatalogHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := ch.currentUser(w, r)
	if !ok {
		return
	}

	libraries, err := ch.src.Libraries(r.Context(), user)
	if err != nil {
		ch.writeSourceError(w, r, "libraries", err)
		return
	}

	if len(libraries) == 1 {
		http.Redirect(w, r, libraryPath(libraries[0].ID)+"?categories=true", http.StatusTemporaryRedirect)
		return
	}

	title := ch.i18n.Localizef("catalog.libraries", r.Header.Get("Accept-Language"), user.Name)
	feed := models.NewFeed(rootFeedID(user.Name), title)
	feed.Links = append(feed.Links,
		models.Link{Rel: "self", Type: navigationType, Href: "/opds"},
		models.Link{Rel: "start", Type: navigationType, Href: "/opds"},
	)
	for _, lib := range libraries {
		feed.Entries = append(feed.Entries, libraryEntry(lib))
	}

	RenderOPDSFeed(w, feed, false)
}

// LibraryHandler обрабатывает GET /opds/libraries/{id}: навигация по
// категориям (параметр categories) или страница книг с учетом фильтров.
func (ch *CatalogHandler) LibraryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := ch.currentUser(w, r)
	if !ok {
		return
	}
	libraryID := r.PathValue("id")
	q := engine.ParseQuery(r.URL.Query())

	if q.Categories {
		ch.renderCategories(w, r, libraryID)
		return
	}

	ctx := r.Context()
	library, err := ch.src.Library(ctx, user, libraryID)
	if err != nil {
		ch.writeSourceError(w, r, "library", err)
		return
	}
	items, err := ch.src.Items(ctx, user, libraryID)
	if err != nil {
		ch.writeSourceError(w, r, "items", err)
		return
	}

	page, total := ch.engine.FilterAndPaginate(items, q)

	base := libraryPath(libraryID)
	if params := q.FilterParams(); params != "" {
		base += "?" + params
	}
	window, links := engine.Paginate(total, ch.engine.PageSize(), q.Page, base)

	log.Debug("Фид библиотеки", "library", libraryID, "user", user.Name,
		"total", total, "page", q.Page, "pages", window.TotalPages)

	feed := models.NewFeed(libraryFeedID(libraryID), library.Name)
	feed.Icon = library.Icon
	addSearchLinks(feed, libraryID, ch.Localize(r, "search.title"))
	addPagination(feed, window, links)

	linkURL := ch.LinkURL()
	for _, item := range page {
		feed.Entries = append(feed.Entries, CreateAcquisitionEntry(item, user, linkURL))
	}

	RenderOPDSFeed(w, feed, true)
}

func (ch *CatalogHandler) renderCategories(w http.ResponseWriter, r *http.Request, libraryID string) {
	base := libraryPath(libraryID)
	feed := models.NewFeed(libraryFeedID(libraryID), ch.Localize(r, "catalog.categories"))
	feed.Links = append(feed.Links,
		models.Link{Rel: "self", Type: navigationType, Href: base + "?categories=true"},
		models.Link{Rel: "start", Type: navigationType, Href: "/opds"},
	)
	addSearchLinks(feed, libraryID, ch.Localize(r, "search.title"))

	feed.Entries = append(feed.Entries, CreateNavigationEntry(libraryID, ch.Localize(r, "category.all"), base))
	for _, facet := range engine.Facets() {
		name := facet.String()
		feed.Entries = append(feed.Entries,
			CreateNavigationEntry(name, ch.Localize(r, "category."+name), base+"/"+name))
	}

	RenderOPDSFeed(w, feed, false)
}

// SearchDefinitionHandler обрабатывает GET /opds/libraries/{id}/search-definition
func (ch *CatalogHandler) SearchDefinitionHandler(w http.ResponseWriter, r *http.Request) {
	desc := searchDescription(r.PathValue("id"), ch.CatalogTitle(), ch.Localize(r, "search.title"))
	w.Header().Set("Content-Type", searchDescType+"; charset=utf-8")
	writeXML(w, desc, "search-definition")
}
