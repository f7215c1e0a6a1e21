package engine

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var pageParam = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`[?&]page=\d+`)
})

// PageWindow границы страницы в отфильтрованной выборке: [Start, End)
type PageWindow struct {
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
	Start      int
	End        int
}

// Len количество записей на странице
func (w PageWindow) Len() int {
	return w.End - w.Start
}

// NavLinks ссылки навигации. Пустая строка означает, что ссылки нет.
type NavLinks struct {
	Self     string
	First    string
	Previous string
	Next     string
	Last     string
}

// Paginate вычисляет окно страницы и ссылки навигации. Страница за пределами
// выборки дает пустое окно, а не ошибку.
func Paginate(totalItems, pageSize, page int, baseURL string) (PageWindow, NavLinks) {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 0 {
		page = 0
	}
	totalItems = max(totalItems, 0)

	w := PageWindow{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: (totalItems + pageSize - 1) / pageSize,
	}

	// page*pageSize может переполниться для очень большого page
	if page < w.TotalPages {
		w.Start = page * pageSize
		w.End = min(w.Start+pageSize, totalItems)
	} else {
		w.Start = totalItems
		w.End = totalItems
	}

	clean := StripPageParam(baseURL)
	sep := "?"
	if strings.Contains(clean, "?") {
		sep = "&"
	}
	withPage := func(p int) string {
		return clean + sep + "page=" + strconv.Itoa(p)
	}

	links := NavLinks{Self: clean, First: clean}
	if page > 0 {
		if page-1 > 0 {
			links.Previous = withPage(page - 1)
		} else {
			links.Previous = clean
		}
	}
	if page < w.TotalPages-1 {
		links.Next = withPage(page + 1)
	}
	if w.TotalPages > 1 {
		links.Last = withPage(w.TotalPages - 1)
	}

	return w, links
}

// StripPageParam удаляет параметр page из адреса. Если page стоял первым,
// следующий параметр становится первым.
func StripPageParam(rawURL string) string {
	re := pageParam()
	loc := re.FindStringIndex(rawURL)
	for loc != nil {
		lead := rawURL[loc[0]]
		rest := rawURL[loc[1]:]
		if lead == '?' && strings.HasPrefix(rest, "&") {
			rest = "?" + rest[1:]
		}
		rawURL = rawURL[:loc[0]] + rest
		loc = re.FindStringIndex(rawURL)
	}
	return rawURL
}
