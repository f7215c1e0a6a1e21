package engine

import (
	"regexp"
	"slices"
	"strings"
	"sync"

	"absopds/models"
)

// seriesNumber номер книги в серии: "Сага #3" -> "Сага"
var seriesNumber = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`(?s)#.*$`)
})

func trim(s string) string {
	return strings.TrimSpace(s)
}

// splitList разбивает строку вида "Автор 1, Автор 2" на отдельные значения.
// Пустые значения между запятыми сохраняются.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = trim(p)
	}
	return parts
}

// splitSeries как splitList, но дополнительно отрезает номер в серии
func splitSeries(s string) []string {
	parts := splitList(s)
	re := seriesNumber()
	for i, p := range parts {
		parts[i] = trim(re.ReplaceAllString(p, ""))
	}
	return parts
}

func toAuthors(names []string) []models.Author {
	authors := make([]models.Author, 0, len(names))
	for _, name := range names {
		authors = append(authors, models.Author{Name: name})
	}
	return authors
}

// Normalize преобразует сырую запись в публичный вид. Не изменяет item.
func Normalize(item *models.AbsItem) models.LibraryItem {
	md := &item.Media.Metadata
	return models.LibraryItem{
		ID:            item.ID,
		Title:         md.Title,
		Subtitle:      md.Subtitle,
		Description:   md.Description,
		Genres:        slices.Clone(md.Genres),
		Tags:          slices.Clone(md.Tags),
		Publisher:     md.Publisher,
		ISBN:          md.ISBN,
		Language:      md.Language,
		PublishedYear: md.PublishedYear,
		Authors:       toAuthors(splitList(md.AuthorName)),
		Narrators:     toAuthors(splitList(md.NarratorName)),
		Series:        splitSeries(md.SeriesName),
		Format:        item.Media.EbookFormat,
	}
}
