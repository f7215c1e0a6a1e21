package engine

import (
	"fmt"

	"absopds/models"
)

func book(id, title, author string) models.AbsItem {
	return models.AbsItem{
		ID: id,
		Media: models.AbsMedia{
			EbookFormat: "epub",
			Metadata: models.AbsMetadata{
				Title:      title,
				AuthorName: author,
				Language:   "en",
			},
		},
	}
}

func withGenres(item models.AbsItem, genres ...string) models.AbsItem {
	item.Media.Metadata.Genres = genres
	return item
}

func withTags(item models.AbsItem, tags ...string) models.AbsItem {
	item.Media.Metadata.Tags = tags
	return item
}

func audiobook(item models.AbsItem) models.AbsItem {
	item.Media.EbookFormat = ""
	return item
}

func ids(items []*models.AbsItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// generateLibrary детерминированная библиотека заданного размера
func generateLibrary(n int) []models.AbsItem {
	authors := []string{"J.R.R. Tolkien", "George Orwell", "Émile Zola", "Ernest Hemingway", "Лев Толстой", "Ursula K. Le Guin, Ted Chiang"}
	genres := []string{"Fantasy", "Sci-Fi", "Classic", " Drama ", "Poetry"}
	series := []string{"", "The Foo Saga #1", "Bar #2, Baz", "Discworld #41"}

	items := make([]models.AbsItem, 0, n)
	for i := 0; i < n; i++ {
		it := book(fmt.Sprintf("id-%05d", i), fmt.Sprintf("Book %d", i), authors[i%len(authors)])
		it = withGenres(it, genres[i%len(genres)])
		if i%7 == 0 {
			it = withTags(it, "favorite")
		}
		it.Media.Metadata.SeriesName = series[i%len(series)]
		it.Media.Metadata.NarratorName = fmt.Sprintf("Narrator %d", i%13)
		if i%5 == 0 {
			it = audiobook(it)
		}
		items = append(items, it)
	}
	return items
}
