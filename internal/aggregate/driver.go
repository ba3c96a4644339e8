// Package aggregate runs the collection, normalization, deduplication and
// enrichment phases of one aggregation run.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
	"github.com/lehigh-university-libraries/amharic-books/internal/sources"
)

var errAdapterPanic = errors.New("adapter panicked")

// DefaultConcurrency bounds concurrent enrichment lookups.
const DefaultConcurrency = 5

// Normalizer brings a raw record into canonical form.
type Normalizer interface {
	Normalize(ctx context.Context, rec *models.Record) *models.Record
}

// Admitter decides whether a record is new in this run.
type Admitter interface {
	Admit(rec *models.Record) bool
	Seen() int
	Reset()
}

// Enricher fills missing metadata on a record.
type Enricher interface {
	Enrich(ctx context.Context, rec *models.Record) *models.Record
}

// Driver orchestrates one run. Adapters run one at a time in order;
// enrichment is the only concurrent phase.
type Driver struct {
	Adapters   []sources.Adapter
	Normalizer Normalizer
	Dedup      Admitter
	// Enricher may be nil to skip enrichment.
	Enricher    Enricher
	Limit       int
	Concurrency int
	Progress    func(Progress)
}

// Result is the accepted record set in admission order plus run statistics.
type Result struct {
	Records []*models.Record
	Summary Summary
}

// SourceStats describes what one adapter contributed.
type SourceStats struct {
	Name      string        `yaml:"name"`
	Collected int           `yaml:"collected"`
	Admitted  int           `yaml:"admitted"`
	Error     string        `yaml:"error,omitempty"`
	Duration  time.Duration `yaml:"duration"`
}

// Summary describes a finished run.
type Summary struct {
	RunID      string        `yaml:"run_id"`
	StartedAt  time.Time     `yaml:"started_at"`
	FinishedAt time.Time     `yaml:"finished_at"`
	Sources    []SourceStats `yaml:"sources"`
	Accepted   int           `yaml:"accepted"`
	Candidates int           `yaml:"enrichment_candidates"`
	Enriched   int           `yaml:"enriched"`
}

// Run executes every phase and returns the accepted records. A failing
// adapter is logged and skipped; only cancellation ends the run early.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	summary := Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	slog.Info("Starting run", "run_id", summary.RunID, "sources", len(d.Adapters))

	d.Dedup.Reset()

	var accepted []*models.Record
	for _, a := range d.Adapters {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled: %w", err)
		}

		stats := SourceStats{Name: a.Name()}
		start := time.Now()
		raw, err := collect(ctx, a, d.Limit)
		stats.Duration = time.Since(start)
		stats.Collected = len(raw)
		if err != nil {
			stats.Error = err.Error()
			if errors.Is(err, errAdapterPanic) {
				slog.Error("Source panicked", "source", a.Name(), "err", err)
			} else {
				slog.Warn("Source unavailable", "source", a.Name(), "collected", len(raw), "err", err)
			}
		}

		for i := range raw {
			rec := &raw[i]
			d.Normalizer.Normalize(ctx, rec)
			if d.Dedup.Admit(rec) {
				accepted = append(accepted, rec)
				stats.Admitted++
			}
		}

		slog.Info("Source finished", "source", a.Name(), "collected", stats.Collected, "admitted", stats.Admitted, "duration", stats.Duration.Round(time.Millisecond))
		summary.Sources = append(summary.Sources, stats)
	}

	summary.Accepted = len(accepted)
	slog.Info("Collection finished", "accepted", summary.Accepted, "admitted", d.Dedup.Seen())

	if d.Enricher != nil {
		stats, err := EnrichRecords(ctx, accepted, d.Enricher, d.Concurrency, d.Progress)
		if err != nil {
			return nil, err
		}
		summary.Candidates = stats.Candidates
		summary.Enriched = stats.Enriched
	}

	summary.FinishedAt = time.Now()
	return &Result{Records: accepted, Summary: summary}, nil
}

// collect runs one adapter, turning a panic into an error.
func collect(ctx context.Context, a sources.Adapter, limit int) (records []models.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("Adapter panic", "source", a.Name(), "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %s: %v", errAdapterPanic, a.Name(), r)
		}
	}()
	return a.Scrape(ctx, limit)
}
