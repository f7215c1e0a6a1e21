package engine

import (
	"testing"

	"absopds/models"

	"github.com/stretchr/testify/assert"
)

func TestBuckets(t *testing.T) {
	got := Buckets([]string{"Émile Zola", "Ernest Hemingway", "Orwell"})

	assert.Equal(t, []CategoryEntry{
		{Letter: "E", Count: 2},
		{Letter: "O", Count: 1},
	}, got)
}

func TestBuckets_DropsNonLatin(t *testing.T) {
	got := Buckets([]string{"1984 Society", "Лев Толстой", "ßtraße", "ørsted", "apple", "Zed"})

	assert.Equal(t, []CategoryEntry{
		{Letter: "A", Count: 1},
		{Letter: "Z", Count: 1},
	}, got)
}

func TestByLetter(t *testing.T) {
	values := []string{"Ernest Hemingway", "George Orwell", "Orwell", "Émile Zola", "ernie"}

	tests := []struct {
		name  string
		start string
		want  []string
	}{
		{"lowercase letter folds accents", "e", []string{"Ernest Hemingway", "Émile Zola", "ernie"}},
		{"uppercase letter", "E", []string{"Ernest Hemingway", "Émile Zola", "ernie"}},
		{"accented letter", "é", []string{"Ernest Hemingway", "Émile Zola", "ernie"}},
		{"single match", "g", []string{"George Orwell"}},
		{"no match", "x", []string{}},
		{"no letter returns everything", "", values},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ByLetter(values, tt.start)
			names := make([]string, 0, len(got))
			for _, e := range got {
				assert.False(t, e.IsBucket())
				names = append(names, e.Value)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestDistinctValues(t *testing.T) {
	a := withTags(withGenres(book("1", "A", "Neil Gaiman, Terry Pratchett"), "Fantasy", " Humor "), "fantasy")
	a.Media.Metadata.SeriesName = "Discworld #12"
	a.Media.Metadata.NarratorName = "Stephen Fry"
	b := withGenres(book("2", "B", "Neil Gaiman"), "Fantasy", "")
	b.Media.Metadata.SeriesName = "Discworld #13, Sandman"
	c := audiobook(book("3", "C", "Zadie Smith"))
	items := []models.AbsItem{a, b, c}

	e := newTestEngine(Options{})

	assert.Equal(t, []string{"Neil Gaiman", "Terry Pratchett", "Zadie Smith"}, e.DistinctValues(items, FacetAuthors))
	assert.Equal(t, []string{"Stephen Fry"}, e.DistinctValues(items, FacetNarrators))
	assert.Equal(t, []string{"Fantasy", "Humor", "fantasy"}, e.DistinctValues(items, FacetGenres))
	assert.Equal(t, []string{"Discworld", "Sandman"}, e.DistinctValues(items, FacetSeries))
	assert.Nil(t, e.DistinctValues(items, FacetNone))
}

func TestBuildCategoryListing(t *testing.T) {
	items := []models.AbsItem{
		book("1", "A", "Émile Zola"),
		book("2", "B", "Ernest Hemingway"),
		book("3", "C", "Orwell"),
	}

	t.Run("bucket mode", func(t *testing.T) {
		e := newTestEngine(Options{Bucketing: true})
		got := e.BuildCategoryListing(items, FacetAuthors, Query{})
		assert.Equal(t, []CategoryEntry{{Letter: "E", Count: 2}, {Letter: "O", Count: 1}}, got)
	})

	t.Run("bucket mode with start letter lists values", func(t *testing.T) {
		e := newTestEngine(Options{Bucketing: true})
		got := e.BuildCategoryListing(items, FacetAuthors, Query{Start: "e"})
		assert.Equal(t, []CategoryEntry{{Value: "Ernest Hemingway"}, {Value: "Émile Zola"}}, got)
	})

	t.Run("bucketing disabled lists everything", func(t *testing.T) {
		e := newTestEngine(Options{})
		got := e.BuildCategoryListing(items, FacetAuthors, Query{})
		assert.Len(t, got, 3)
	})

	t.Run("text filters are ignored", func(t *testing.T) {
		e := newTestEngine(Options{})
		got := e.BuildCategoryListing(items, FacetAuthors, Query{Search: "Orwell", Author: "Zola"})
		assert.Len(t, got, 3)
	})
}
