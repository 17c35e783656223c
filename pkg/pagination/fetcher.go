// Package pagination assembles complete result sets from limit/offset
// paginated provider endpoints using a bounded worker pool. The first page
// establishes the total; remaining offsets are fetched in parallel within
// the provider client's rate budget and merged in offset order.
package pagination

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds fetcher configuration.
type Config struct {
	// MaxConcurrency is the number of parallel page fetches.
	MaxConcurrency int

	// Timeout bounds each individual page fetch.
	Timeout time.Duration
}

// DefaultConfig returns safe defaults for the providers this gateway uses.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        30 * time.Second,
	}
}

// PageFunc fetches one page of items starting at offset and reports the
// total size of the result set.
type PageFunc[T any] func(ctx context.Context, offset, limit int) (items []T, total int, err error)

type pageResult[T any] struct {
	offset int
	items  []T
}

// FetchAll retrieves every page of a result set and returns the items in
// offset order. Unlike a best-effort crawl, a range retrieval is
// complete-or-failed: any page error fails the whole call.
func FetchAll[T any](ctx context.Context, cfg Config, pageSize int, fetch PageFunc[T]) ([]T, error) {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	start := time.Now()

	firstItems, total, err := fetch(ctx, 0, pageSize)
	if err != nil {
		return nil, err
	}
	if total <= len(firstItems) {
		return firstItems, nil
	}

	offsets := make([]int, 0, (total-1)/pageSize)
	for offset := pageSize; offset < total; offset += pageSize {
		offsets = append(offsets, offset)
	}

	log.Debug().
		Int("total", total).
		Int("pages", len(offsets)+1).
		Msg("Starting parallel page fetch")

	queue := make(chan int, len(offsets))
	results := make(chan pageResult[T], len(offsets))
	errs := make(chan error, cfg.MaxConcurrency)

	for _, offset := range offsets {
		queue <- offset
	}
	close(queue)

	var wg sync.WaitGroup
	for i := 0; i < cfg.MaxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for offset := range queue {
				select {
				case <-ctx.Done():
					return
				default:
				}

				pageCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
				items, _, err := fetch(pageCtx, offset, pageSize)
				cancel()

				if err != nil {
					select {
					case errs <- err:
					default:
					}
					return
				}
				results <- pageResult[T]{offset: offset, items: items}
			}
		}()
	}

	wg.Wait()
	close(results)
	close(errs)

	if err := <-errs; err != nil {
		return nil, fmt.Errorf("page fetch failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages := make([]pageResult[T], 0, len(offsets)+1)
	pages = append(pages, pageResult[T]{offset: 0, items: firstItems})
	for r := range results {
		pages = append(pages, r)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].offset < pages[j].offset })

	merged := make([]T, 0, total)
	for _, p := range pages {
		merged = append(merged, p.items...)
	}

	log.Debug().
		Int("items", len(merged)).
		Int("pages", len(pages)).
		Dur("duration", time.Since(start)).
		Msg("Page fetch complete")

	return merged, nil
}
