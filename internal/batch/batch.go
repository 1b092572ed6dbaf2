// Package batch обрабатывает набор кадров параллельно.
//
// Каждый кадр обрабатывается независимо, общего изменяемого состояния между
// вызовами нет. Первая ошибка отменяет контекст остальных задач.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run вызывает fn для каждого элемента items не более чем в workers горутинах.
// Результаты возвращаются в порядке items.
func Run[T, R any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
