package engine

import (
	"errors"
	"fmt"

	"absopds/models"
)

// ErrUnknownFacet возвращается для типа категории, которого нет в каталоге
var ErrUnknownFacet = errors.New("неизвестный тип категории")

// Facet измерение, по которому можно просматривать каталог
type Facet int

const (
	FacetNone Facet = iota
	FacetAuthors
	FacetNarrators
	FacetGenres
	FacetSeries
)

// Facets возвращает все доступные для просмотра категории в порядке показа
func Facets() []Facet {
	return []Facet{FacetAuthors, FacetNarrators, FacetGenres, FacetSeries}
}

// ParseFacet разбирает значение параметра type
func ParseFacet(s string) (Facet, error) {
	switch s {
	case "authors":
		return FacetAuthors, nil
	case "narrators":
		return FacetNarrators, nil
	case "genres":
		return FacetGenres, nil
	case "series":
		return FacetSeries, nil
	}
	return FacetNone, fmt.Errorf("%w: %q", ErrUnknownFacet, s)
}

func (f Facet) String() string {
	switch f {
	case FacetAuthors:
		return "authors"
	case FacetNarrators:
		return "narrators"
	case FacetGenres:
		return "genres"
	case FacetSeries:
		return "series"
	}
	return ""
}

// rawField вызывает yield для каждого сырого (неразбитого) значения поля фасета.
// Используется фильтром: имя ищется по строке целиком.
type rawField func(item *models.AbsItem, yield func(string) bool) bool

// valueField вызывает yield для каждого отдельного значения фасета после разбиения.
// Используется категоризатором.
type valueField func(item *models.AbsItem, yield func(string))

func (f Facet) raw() rawField {
	switch f {
	case FacetAuthors:
		return rawAuthor
	case FacetNarrators:
		return rawNarrator
	case FacetGenres:
		return rawGenresAndTags
	case FacetSeries:
		return rawSeries
	}
	return nil
}

func (f Facet) values() valueField {
	switch f {
	case FacetAuthors:
		return authorValues
	case FacetNarrators:
		return narratorValues
	case FacetGenres:
		return genreValues
	case FacetSeries:
		return seriesValues
	}
	return nil
}

func rawAuthor(item *models.AbsItem, yield func(string) bool) bool {
	return item.Media.Metadata.AuthorName != "" && yield(item.Media.Metadata.AuthorName)
}

func rawNarrator(item *models.AbsItem, yield func(string) bool) bool {
	return item.Media.Metadata.NarratorName != "" && yield(item.Media.Metadata.NarratorName)
}

func rawSeries(item *models.AbsItem, yield func(string) bool) bool {
	return item.Media.Metadata.SeriesName != "" && yield(item.Media.Metadata.SeriesName)
}

func rawGenresAndTags(item *models.AbsItem, yield func(string) bool) bool {
	for _, g := range item.Media.Metadata.Genres {
		if yield(g) {
			return true
		}
	}
	for _, t := range item.Media.Metadata.Tags {
		if yield(t) {
			return true
		}
	}
	return false
}

func authorValues(item *models.AbsItem, yield func(string)) {
	for _, name := range splitList(item.Media.Metadata.AuthorName) {
		yield(name)
	}
}

func narratorValues(item *models.AbsItem, yield func(string)) {
	for _, name := range splitList(item.Media.Metadata.NarratorName) {
		yield(name)
	}
}

func genreValues(item *models.AbsItem, yield func(string)) {
	for _, g := range item.Media.Metadata.Genres {
		yield(trim(g))
	}
	for _, t := range item.Media.Metadata.Tags {
		yield(trim(t))
	}
}

func seriesValues(item *models.AbsItem, yield func(string)) {
	for _, s := range splitSeries(item.Media.Metadata.SeriesName) {
		yield(s)
	}
}
