package engine

import (
	"net/url"
	"strconv"
	"strings"
)

// Query параметры запроса к библиотеке
type Query struct {
	Search     string // q
	Facet      Facet  // type
	Name       string // name, значение фасета
	Author     string
	Title      string
	Page       int    // с нуля
	Start      string // буква для просмотра категории
	Categories bool   // показать навигацию по категориям вместо книг
}

// ParseQuery читает параметры из строки запроса. Некорректные значения
// page и type не считаются ошибкой: номер страницы становится 0,
// неизвестный тип игнорируется.
func ParseQuery(v url.Values) Query {
	q := Query{
		Search: v.Get("q"),
		Name:   v.Get("name"),
		Author: v.Get("author"),
		Title:  v.Get("title"),
		Start:  v.Get("start"),
	}
	_, q.Categories = v["categories"]

	if t := v.Get("type"); t != "" {
		if facet, err := ParseFacet(t); err == nil {
			q.Facet = facet
		}
	}

	if p := strings.TrimSpace(v.Get("page")); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			q.Page = n
		}
	}

	return q
}

// FilterParams возвращает параметры, определяющие выборку (без page),
// в том порядке, в каком они попадают в ссылки навигации.
func (q Query) FilterParams() string {
	var params []string
	add := func(key, value string) {
		if value != "" {
			params = append(params, key+"="+url.QueryEscape(value))
		}
	}
	add("q", q.Search)
	add("type", q.Facet.String())
	add("name", q.Name)
	add("author", q.Author)
	add("title", q.Title)
	return strings.Join(params, "&")
}
