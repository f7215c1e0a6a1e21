// opds/feed.go
package opds

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"absopds/engine"
	"absopds/models"
)

const (
	catalogType     = "application/atom+xml;profile=opds-catalog"
	navigationType  = catalogType + ";kind=navigation"
	acquisitionType = catalogType + ";kind=acquisition"
	searchDescType  = "application/opensearchdescription+xml"

	relAcquisition = "http://opds-spec.org/acquisition"
	relImage       = "http://opds-spec.org/image"
	relThumbnail   = "http://opds-spec.org/image/thumbnail"
)

// пространство имен для идентификаторов карточек категорий
var cardNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:absopds:card"))

// MimeType возвращает MIME-тип формата записи
func MimeType(format string) string {
	switch format {
	case "audiobook":
		return "audio/mpeg"
	case "epub":
		return "application/epub+zip"
	case "pdf":
		return "application/pdf"
	case "mobi":
		return "application/x-mobipocket-ebook"
	default:
		return "application/octet-stream"
	}
}

// RenderOPDSFeed кодирует фид в ответ
func RenderOPDSFeed(w http.ResponseWriter, feed *models.Feed, isAcquisition bool) {
	contentType := navigationType
	if isAcquisition {
		contentType = acquisitionType
	}
	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	writeXML(w, feed, feed.Title)
}

func writeXML(w http.ResponseWriter, v any, name string) {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error("Ошибка кодирования XML", "feed", name, "err", err)
		http.Error(w, "XML encoding error", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(data)
}

// rootFeedID идентификатор корневого фида пользователя
func rootFeedID(userName string) string {
	return fmt.Sprintf("urn:absopds:%016x", xxhash.Sum64String(userName))
}

func libraryFeedID(libraryID string) string {
	return "urn:uuid:" + libraryID
}

func now() string {
	return time.Now().UTC().Format(models.TimeFormat)
}

// CreateNavigationEntry создает навигационную запись
func CreateNavigationEntry(id, title, href string) models.Entry {
	return models.Entry{
		ID:      id,
		Title:   title,
		Updated: now(),
		Links: []models.Link{{
			Rel:  "subsection",
			Type: catalogType,
			Href: href,
		}},
	}
}

// cardEntry карточка значения или буквы категории. Идентификатор
// стабилен для одного и того же адреса.
func cardEntry(title, href string) models.Entry {
	id := "urn:uuid:" + uuid.NewSHA1(cardNamespace, []byte(href)).String()
	return CreateNavigationEntry(id, title, href)
}

func libraryEntry(lib models.Library) models.Entry {
	return CreateNavigationEntry(lib.ID, lib.Name, libraryPath(lib.ID)+"?categories=true")
}

func libraryPath(libraryID string) string {
	return "/opds/libraries/" + url.PathEscape(libraryID)
}

// CreateAcquisitionEntry создает запись книги со ссылками на скачивание.
// Ссылки ведут на сервер linkURL и содержат токен пользователя.
func CreateAcquisitionEntry(item models.LibraryItem, user models.InternalUser, linkURL string) models.Entry {
	entry := models.Entry{
		ID:         "urn:uuid:" + item.ID,
		Title:      item.Title,
		Subtitle:   item.Subtitle,
		Updated:    now(),
		Publisher:  item.Publisher,
		Identifier: item.ISBN,
		Issued:     item.PublishedYear,
		Language:   item.Language,
	}
	if item.Description != "" {
		entry.Content = &models.Content{Type: "text", Text: item.Description}
	}

	itemURL := func(kind string) string {
		return fmt.Sprintf("%s/api/items/%s/%s?token=%s",
			linkURL, url.PathEscape(item.ID), kind, url.QueryEscape(user.APIKey))
	}

	downloadType := MimeType("")
	if item.Format == "" {
		downloadType = MimeType("audiobook")
	}
	entry.Links = append(entry.Links, models.Link{Rel: relAcquisition, Type: downloadType, Href: itemURL("download")})
	if item.Format != "" {
		entry.Links = append(entry.Links, models.Link{Rel: relAcquisition, Type: MimeType(item.Format), Href: itemURL("ebook")})
	}

	cover := itemURL("cover")
	entry.Links = append(entry.Links,
		models.Link{Rel: relImage, Type: "image/webp", Href: cover},
		models.Link{Rel: relImage, Type: "image/png", Href: cover},
		models.Link{Rel: relThumbnail, Type: "image/webp", Href: cover},
	)

	for _, a := range item.Authors {
		if a.Name != "" {
			entry.Authors = append(entry.Authors, models.AuthorInfoForOPDS{Name: a.Name})
		}
	}
	for _, g := range item.Genres {
		entry.Categories = append(entry.Categories, models.Category{Term: g, Label: g})
	}
	for _, t := range item.Tags {
		entry.Categories = append(entry.Categories, models.Category{Term: t, Label: t})
	}

	return entry
}

// addSearchLinks добавляет ссылки поиска по библиотеке
func addSearchLinks(feed *models.Feed, libraryID, title string) {
	base := libraryPath(libraryID)
	feed.Links = append(feed.Links,
		models.Link{Rel: "search", Type: searchDescType, Title: title, Href: base + "/search-definition"},
		models.Link{Rel: "search", Type: catalogType, Title: title, Href: base + "?q={searchTerms}"},
	)
}

// addPagination добавляет счетчики OpenSearch и ссылки навигации по страницам
func addPagination(feed *models.Feed, window engine.PageWindow, links engine.NavLinks) {
	total := window.TotalItems
	start := window.Start + 1
	perPage := window.PageSize
	feed.TotalResults = &total
	feed.StartIndex = &start
	feed.ItemsPerPage = &perPage

	feed.Links = append(feed.Links,
		models.Link{Rel: "self", Type: acquisitionType, Href: links.Self},
		models.Link{Rel: "start", Type: navigationType, Href: "/opds"},
		models.Link{Rel: "first", Type: acquisitionType, Href: links.First},
	)
	optional := []struct{ rel, href string }{
		{"previous", links.Previous},
		{"next", links.Next},
		{"last", links.Last},
	}
	for _, l := range optional {
		if l.href != "" {
			feed.Links = append(feed.Links, models.Link{Rel: l.rel, Type: acquisitionType, Href: l.href})
		}
	}
}

// searchDescription описание OpenSearch для библиотеки
func searchDescription(libraryID, longName, description string) *models.OpenSearchDescription {
	return &models.OpenSearchDescription{
		XmlnsAtom:   "http://www.w3.org/2005/Atom",
		ShortName:   "ABS",
		LongName:    longName,
		Description: description,
		URLs: []models.OpenSearchURL{{
			Type:     acquisitionType,
			Template: libraryPath(libraryID) + "?q={searchTerms}&author={atom:author}&title={atom:title}",
		}},
	}
}
