// Package engine отбирает, упорядочивает и постранично выдает записи
// библиотеки, а также строит списки значений категорий.
//
// Все функции пакета чистые относительно входных данных: записи не
// изменяются, состояние между запросами не хранится.
package engine

import (
	"absopds/models"

	"github.com/charmbracelet/log"
)

// DefaultPageSize размер страницы по умолчанию
const DefaultPageSize = 20

// Options настройки обработки запросов
type Options struct {
	PageSize     int
	Threshold    int  // с какого размера коллекции включать параллельную обработку
	Workers      int  // число параллельных потоков, 0 = GOMAXPROCS
	ShowNonEbook bool // показывать записи без электронного формата (аудиокниги)
	Bucketing    bool // группировать категории по первой букве
}

// Engine выполняет запросы к коллекции записей одной библиотеки
type Engine struct {
	opts Options
}

// New создает Engine, подставляя значения по умолчанию
func New(opts Options) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers()
	}
	return &Engine{opts: opts}
}

// PageSize возвращает размер страницы
func (e *Engine) PageSize() int {
	return e.opts.PageSize
}

// Filter отбирает записи, подходящие под запрос, сохраняя исходный порядок
func (e *Engine) Filter(items []models.AbsItem, q Query) FilterResult {
	keep := newPredicate(q, CompileQuery(q), e.opts.ShowNonEbook)
	run := choose(e.opts.Threshold, len(items), filterSequential, filterParallel(e.opts.Workers))

	log.Debug("фильтрация записей", "items", len(items), "parallel", len(items) >= e.opts.Threshold)

	matched := run(items, keep)
	return FilterResult{Items: matched, Total: len(matched)}
}

// FilterAndPaginate возвращает нормализованные записи текущей страницы и
// общее количество подходящих записей. Нормализуются только записи страницы.
func (e *Engine) FilterAndPaginate(items []models.AbsItem, q Query) ([]models.LibraryItem, int) {
	res := e.Filter(items, q)
	window, _ := Paginate(res.Total, e.opts.PageSize, q.Page, "")

	page := make([]models.LibraryItem, 0, window.Len())
	for _, item := range res.Items[window.Start:window.End] {
		page = append(page, Normalize(item))
	}
	return page, res.Total
}

// DistinctValues собирает уникальные значения фасета по всей коллекции,
// без учета текстовых фильтров запроса, в порядке возрастания.
func (e *Engine) DistinctValues(items []models.AbsItem, facet Facet) []string {
	field := facet.values()
	if field == nil {
		return nil
	}
	run := choose(e.opts.Threshold, len(items), distinctSequential, distinctParallel(e.opts.Workers))

	log.Debug("сбор значений категории", "facet", facet, "items", len(items), "parallel", len(items) >= e.opts.Threshold)

	return run(items, field).sorted()
}

// BuildCategoryListing строит список категории: группы по буквам, если буква
// не задана и группировка включена, иначе значения (на букву start, если задана).
func (e *Engine) BuildCategoryListing(items []models.AbsItem, facet Facet, q Query) []CategoryEntry {
	values := e.DistinctValues(items, facet)
	if q.Start == "" && e.opts.Bucketing {
		return Buckets(values)
	}
	return ByLetter(values, q.Start)
}
