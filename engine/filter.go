package engine

import (
	"absopds/models"
)

// FilterResult отобранные записи в исходном порядке
type FilterResult struct {
	Items []*models.AbsItem
	Total int
}

// predicate решает, попадает ли запись в выборку
type predicate func(item *models.AbsItem) bool

// newPredicate собирает проверку записи. Условия проверяются в фиксированном
// порядке: формат, поиск или фасет, автор, название.
func newPredicate(q Query, m Matchers, showNonEbook bool) predicate {
	facetField := q.Facet.raw()

	return func(item *models.AbsItem) bool {
		if !item.HasEbook() && !showNonEbook {
			return false
		}

		md := &item.Media.Metadata

		if facetField != nil {
			if m.Name != nil && !facetField(item, m.Name.MatchString) {
				return false
			}
		} else if m.Search != nil && !matchesSearch(item, m.Search) {
			return false
		}

		if m.Author != nil && !(md.AuthorName != "" && m.Author.MatchString(md.AuthorName)) {
			return false
		}

		if m.Title != nil && !matchesAny(m.Title, md.Title, md.Subtitle) {
			return false
		}

		return true
	}
}

func matchesAny(m *Matcher, fields ...string) bool {
	for _, f := range fields {
		if f != "" && m.MatchString(f) {
			return true
		}
	}
	return false
}

// matchesSearch ищет строку по всем текстовым полям записи
func matchesSearch(item *models.AbsItem, m *Matcher) bool {
	md := &item.Media.Metadata
	if matchesAny(m,
		md.Title,
		md.Subtitle,
		md.Description,
		md.Publisher,
		md.ISBN,
		md.Language,
		md.PublishedYear,
		md.AuthorName,
	) {
		return true
	}
	return matchesAny(m, md.Genres...) || matchesAny(m, md.Tags...)
}

// filterSequential один проход по всей коллекции в текущей горутине
func filterSequential(items []models.AbsItem, keep predicate) []*models.AbsItem {
	var out []*models.AbsItem
	for i := range items {
		if keep(&items[i]) {
			out = append(out, &items[i])
		}
	}
	return out
}

// filterParallel делит коллекцию на непрерывные части, фильтрует их
// параллельно и склеивает результаты в порядке частей.
func filterParallel(workers int) func([]models.AbsItem, predicate) []*models.AbsItem {
	return func(items []models.AbsItem, keep predicate) []*models.AbsItem {
		chunks := partition(len(items), workers)
		parts := make([][]*models.AbsItem, len(chunks))

		fanOut(workers, chunks, func(idx int, c chunk) {
			parts[idx] = filterSequential(items[c.from:c.to], keep)
		})

		total := 0
		for _, p := range parts {
			total += len(p)
		}
		out := make([]*models.AbsItem, 0, total)
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}
}
