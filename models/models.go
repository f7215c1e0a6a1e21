// models/models.go
package models

import (
	"encoding/xml"
	"time"
)

// InternalUser учетная запись, от имени которой выполняются запросы к Audiobookshelf.
// APIKey передается в заголовке Authorization и в ссылках на скачивание.
type InternalUser struct {
	Name     string `json:"name"`
	APIKey   string `json:"api_key"`
	Password string `json:"-"`
}

// Library библиотека Audiobookshelf
type Library struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// --- Структуры ответов API Audiobookshelf ---

type AbsLibrariesResponse struct {
	Libraries []Library `json:"libraries"`
}

type AbsItemsResponse struct {
	Results []AbsItem `json:"results"`
}

// AbsItem сырая запись каталога в том виде, в каком ее отдает сервер.
// После получения не изменяется.
type AbsItem struct {
	ID    string   `json:"id"`
	Media AbsMedia `json:"media"`
}

// AbsMedia медиа-часть записи. Пустой EbookFormat означает, что у записи
// нет электронной книги (только аудио).
type AbsMedia struct {
	Metadata    AbsMetadata `json:"metadata"`
	EbookFormat string      `json:"ebookFormat,omitempty"`
}

// AbsMetadata метаданные записи. AuthorName, NarratorName и SeriesName
// содержат несколько значений через запятую.
type AbsMetadata struct {
	Title         string   `json:"title,omitempty"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Description   string   `json:"description,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	Language      string   `json:"language,omitempty"`
	PublishedYear string   `json:"publishedYear,omitempty"`
	AuthorName    string   `json:"authorName,omitempty"`
	NarratorName  string   `json:"narratorName,omitempty"`
	SeriesName    string   `json:"seriesName,omitempty"`
}

// HasEbook сообщает, есть ли у записи электронный формат
func (i *AbsItem) HasEbook() bool {
	return i.Media.EbookFormat != ""
}

type AbsLoginResponse struct {
	User AbsUserResponse `json:"user"`
}

type AbsUserResponse struct {
	Username    string `json:"username"`
	AccessToken string `json:"accessToken"`
	Token       string `json:"token"`
}

// --- Нормализованная запись для выдачи клиентам ---

// Author автор или чтец
type Author struct {
	Name string `json:"name"`
}

// LibraryItem запись каталога после нормализации
type LibraryItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title,omitempty"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Description   string   `json:"description,omitempty"`
	Genres        []string `json:"genres"`
	Tags          []string `json:"tags"`
	Publisher     string   `json:"publisher,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	Language      string   `json:"language,omitempty"`
	PublishedYear string   `json:"publishedYear,omitempty"`
	Authors       []Author `json:"authors"`
	Narrators     []Author `json:"narrators"`
	Series        []string `json:"series"`
	Format        string   `json:"format,omitempty"`
}

// --- OPDS ---

// Feed представляет собой OPDS каталог
type Feed struct {
	XMLName         xml.Name `xml:"http://www.w3.org/2005/Atom feed"`
	XmlnsOpds       string   `xml:"xmlns:opds,attr"`
	XmlnsDcterms    string   `xml:"xmlns:dcterms,attr"`
	XmlnsOpensearch string   `xml:"xmlns:opensearch,attr"`
	ID              string   `xml:"id"`
	Title           string   `xml:"title"`
	Updated         string   `xml:"updated"`
	Icon            string   `xml:"icon,omitempty"`
	TotalResults    *int     `xml:"opensearch:totalResults,omitempty"`
	StartIndex      *int     `xml:"opensearch:startIndex,omitempty"`
	ItemsPerPage    *int     `xml:"opensearch:itemsPerPage,omitempty"`
	Links           []Link   `xml:"link"`
	Entries         []Entry  `xml:"entry"`
}

// AuthorInfoForOPDS представляет автора для OPDS фида
type AuthorInfoForOPDS struct {
	Name string `xml:"name"`
	URI  string `xml:"uri,omitempty"`
}

// Entry представляет собой запись в каталоге (книга или категория)
type Entry struct {
	ID         string              `xml:"id"`
	Title      string              `xml:"title"`
	Subtitle   string              `xml:"subtitle,omitempty"`
	Updated    string              `xml:"updated"`
	Content    *Content            `xml:"content,omitempty"`
	Publisher  string              `xml:"dcterms:publisher,omitempty"`
	Identifier string              `xml:"dcterms:identifier,omitempty"`
	Issued     string              `xml:"dcterms:issued,omitempty"`
	Language   string              `xml:"dcterms:language,omitempty"`
	Authors    []AuthorInfoForOPDS `xml:"author,omitempty"`
	Categories []Category          `xml:"category,omitempty"`
	Links      []Link              `xml:"link"`
}

// Content содержит описание записи
type Content struct {
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

// Category жанр или тег книги
type Category struct {
	Term  string `xml:"term,attr"`
	Label string `xml:"label,attr,omitempty"`
}

// Link представляет собой ссылку на ресурс
type Link struct {
	Rel   string `xml:"rel,attr,omitempty"`
	Type  string `xml:"type,attr,omitempty"`
	Title string `xml:"title,attr,omitempty"`
	Href  string `xml:"href,attr"`
}

// OpenSearchDescription описание поиска для клиентов OPDS
type OpenSearchDescription struct {
	XMLName     xml.Name        `xml:"http://a9.com/-/spec/opensearch/1.1/ OpenSearchDescription"`
	XmlnsAtom   string          `xml:"xmlns:atom,attr"`
	ShortName   string          `xml:"ShortName"`
	LongName    string          `xml:"LongName"`
	Description string          `xml:"Description"`
	URLs        []OpenSearchURL `xml:"Url"`
}

type OpenSearchURL struct {
	Type     string `xml:"type,attr"`
	Template string `xml:"template,attr"`
}

// TimeFormat формат дат в фидах
const TimeFormat = time.RFC3339

// NewFeed создает новый OPDS каталог
func NewFeed(id, title string) *Feed {
	return &Feed{
		XmlnsOpds:       "http://opds-spec.org/2010/catalog",
		XmlnsDcterms:    "http://purl.org/dc/terms/",
		XmlnsOpensearch: "http://a9.com/-/spec/opensearch/1.1/",
		ID:              id,
		Title:           title,
		Updated:         time.Now().UTC().Format(TimeFormat),
	}
}
