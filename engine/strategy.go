package engine

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultThreshold размер коллекции, начиная с которого обработка идет параллельно
const DefaultThreshold = 5000

// chunksPerWorker сколько частей приходится на один поток: части мельче,
// чтобы неравномерные по стоимости записи не задерживали весь проход.
const chunksPerWorker = 4

// chunk полуинтервал индексов [from, to)
type chunk struct {
	from, to int
}

// partition делит n элементов на непрерывные части
func partition(n, workers int) []chunk {
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	parts := workers * chunksPerWorker
	size := (n + parts - 1) / parts
	chunks := make([]chunk, 0, parts)
	for from := 0; from < n; from += size {
		chunks = append(chunks, chunk{from: from, to: min(from+size, n)})
	}
	return chunks
}

// fanOut выполняет fn для каждой части, не более workers одновременно,
// и ждет завершения всех. Каждая часть пишет только в свой слот результата.
// Паника в части перехватывается и повторяется в вызывающей горутине.
func fanOut(workers int, chunks []chunk, fn func(idx int, c chunk)) {
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for idx, c := range chunks {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("engine: chunk [%d,%d) panicked: %v", c.from, c.to, r)
				}
			}()
			fn(idx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		panic(err)
	}
}

// choose выбирает последовательную или параллельную реализацию.
// Обе реализации обязаны давать одинаковый результат.
func choose[F any](threshold, n int, sequential, parallel F) F {
	if n < threshold {
		return sequential
	}
	return parallel
}

func defaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}
