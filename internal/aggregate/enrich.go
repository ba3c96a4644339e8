package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

// Progress reports one finished enrichment.
type Progress struct {
	Done   int
	Total  int
	Title  string
	Filled int
}

// EnrichStats counts the outcome of an enrichment pass.
type EnrichStats struct {
	Candidates int
	Enriched   int
}

// EnrichRecords enriches, in place, every record missing an ISBN, page count
// or publisher, running at most concurrency lookups at once. Records keep
// their positions. It returns an error only when ctx is cancelled.
func EnrichRecords(ctx context.Context, records []*models.Record, e Enricher, concurrency int, progress func(Progress)) (EnrichStats, error) {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	var candidates []*models.Record
	for _, rec := range records {
		if rec.NeedsEnrichment() {
			candidates = append(candidates, rec)
		}
	}

	stats := EnrichStats{Candidates: len(candidates)}
	slog.Info("Enriching records", "candidates", len(candidates), "complete", len(records)-len(candidates), "concurrency", concurrency)

	var (
		mu   sync.Mutex
		done int
	)

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for _, rec := range candidates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			before := rec.FilledFields()
			enrichOne(ctx, e, rec)
			filled := rec.FilledFields() - before

			mu.Lock()
			defer mu.Unlock()
			done++
			if filled > 0 {
				stats.Enriched++
			}
			if progress != nil {
				progress(Progress{Done: done, Total: len(candidates), Title: rec.Title, Filled: filled})
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("enrichment cancelled: %w", err)
	}
	slog.Info("Enrichment finished", "candidates", stats.Candidates, "enriched", stats.Enriched)
	return stats, nil
}

// enrichOne isolates a panicking enricher to the record it was working on.
func enrichOne(ctx context.Context, e Enricher, rec *models.Record) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Enrichment panicked", "title", rec.Title, "panic", r)
		}
	}()
	e.Enrich(ctx, rec)
}
