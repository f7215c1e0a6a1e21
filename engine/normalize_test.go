package engine

import (
	"testing"

	"absopds/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	item := book("li_1", "Good Omens", " Terry Pratchett ,Neil Gaiman")
	item.Media.Metadata.NarratorName = "Martin Jarvis"
	item.Media.Metadata.SeriesName = "The Foo Saga #3, Bar #1"
	item.Media.Metadata.Genres = []string{"Fantasy"}
	item.Media.Metadata.Subtitle = "The Nice and Accurate Prophecies"

	got := Normalize(&item)

	assert.Equal(t, "li_1", got.ID)
	assert.Equal(t, "Good Omens", got.Title)
	assert.Equal(t, "The Nice and Accurate Prophecies", got.Subtitle)
	assert.Equal(t, []models.Author{{Name: "Terry Pratchett"}, {Name: "Neil Gaiman"}}, got.Authors)
	assert.Equal(t, []models.Author{{Name: "Martin Jarvis"}}, got.Narrators)
	assert.Equal(t, []string{"The Foo Saga", "Bar"}, got.Series)
	assert.Equal(t, []string{"Fantasy"}, got.Genres)
	assert.Equal(t, "epub", got.Format)
}

func TestNormalize_EmptyFields(t *testing.T) {
	item := audiobook(book("2", "", ""))

	got := Normalize(&item)

	assert.Empty(t, got.Authors)
	assert.Empty(t, got.Narrators)
	assert.Empty(t, got.Series)
	assert.Empty(t, got.Format)
}

func TestNormalize_KeepsEmptySegments(t *testing.T) {
	item := book("3", "T", "A, ,B")

	got := Normalize(&item)

	assert.Equal(t, []models.Author{{Name: "A"}, {Name: ""}, {Name: "B"}}, got.Authors)
}

func TestNormalize_DoesNotAliasInput(t *testing.T) {
	item := withGenres(book("4", "T", "A"), "Fantasy")

	got := Normalize(&item)
	got.Genres[0] = "changed"

	assert.Equal(t, "Fantasy", item.Media.Metadata.Genres[0])
}

func TestSplitSeries(t *testing.T) {
	assert.Equal(t, []string{"Saga"}, splitSeries("Saga #1.5"))
	assert.Equal(t, []string{"", "Other"}, splitSeries("#1, Other"))
	assert.Nil(t, splitSeries(""))
}
