package engine

import (
	"sort"

	"absopds/models"
)

// CategoryEntry значение категории либо, в режиме групп, буква с количеством
type CategoryEntry struct {
	Value  string
	Letter string
	Count  int
}

// IsBucket сообщает, что запись описывает группу по первой букве
func (e CategoryEntry) IsBucket() bool {
	return e.Letter != ""
}

type valueSet map[string]struct{}

func (s valueSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

// distinctSequential собирает уникальные значения фасета за один проход
func distinctSequential(items []models.AbsItem, field valueField) valueSet {
	set := make(valueSet)
	for i := range items {
		field(&items[i], set.add)
	}
	return set
}

// distinctParallel собирает множества по частям и объединяет их
func distinctParallel(workers int) func([]models.AbsItem, valueField) valueSet {
	return func(items []models.AbsItem, field valueField) valueSet {
		chunks := partition(len(items), workers)
		sets := make([]valueSet, len(chunks))

		fanOut(workers, chunks, func(idx int, c chunk) {
			sets[idx] = distinctSequential(items[c.from:c.to], field)
		})

		merged := make(valueSet)
		for _, s := range sets {
			for v := range s {
				merged[v] = struct{}{}
			}
		}
		return merged
	}
}

func (s valueSet) sorted() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Buckets группирует отсортированные значения по первой латинской букве.
// Значения, начинающиеся с другого символа, в группы не попадают.
func Buckets(values []string) []CategoryEntry {
	counts := make(map[string]int)
	for _, v := range values {
		if letter := bucketLetter(v); letter != "" {
			counts[letter]++
		}
	}

	letters := make([]string, 0, len(counts))
	for letter := range counts {
		letters = append(letters, letter)
	}
	sort.Strings(letters)

	entries := make([]CategoryEntry, 0, len(letters))
	for _, letter := range letters {
		entries = append(entries, CategoryEntry{Letter: letter, Count: counts[letter]})
	}
	return entries
}

// ByLetter оставляет значения, первая буква которых без учета регистра
// и диакритики совпадает со start. Пустой start возвращает все значения.
func ByLetter(values []string, start string) []CategoryEntry {
	want := foldString(start)
	entries := make([]CategoryEntry, 0, len(values))
	for _, v := range values {
		if start != "" && firstLetterKey(v) != want {
			continue
		}
		entries = append(entries, CategoryEntry{Value: v})
	}
	return entries
}
