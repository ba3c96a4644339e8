// Package enrich fills missing record metadata from a book metadata service.
package enrich

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/amharic-books/internal/lookup"
	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

// Cascade tries a fixed sequence of queries for a record and copies the first
// match into the record's empty fields.
type Cascade struct {
	Searcher lookup.Searcher
}

// New returns a cascade over s. s is normally a *lookup.Retrier.
func New(s lookup.Searcher) *Cascade {
	return &Cascade{Searcher: s}
}

type strategy struct {
	name  string
	query func(rec *models.Record) (lookup.Query, bool)
}

var strategies = []strategy{
	{"isbn", func(rec *models.Record) (lookup.Query, bool) {
		return lookup.ISBN(rec.ISBN), rec.ISBN != ""
	}},
	{"title_en", func(rec *models.Record) (lookup.Query, bool) {
		return lookup.Title(rec.TitleEn), rec.TitleEn != ""
	}},
	{"romanized", func(rec *models.Record) (lookup.Query, bool) {
		ok := rec.TitleRomanized != "" && rec.AuthorRomanized != ""
		return lookup.Keywords(rec.TitleRomanized, rec.AuthorRomanized), ok
	}},
	{"title", func(rec *models.Record) (lookup.Query, bool) {
		t := CleanTitle(rec.Title)
		return lookup.Title(t), t != ""
	}},
	{"title_author", func(rec *models.Record) (lookup.Query, bool) {
		t := CleanTitle(rec.Title)
		if rec.Author == "" {
			return lookup.Keywords(t), t != ""
		}
		return lookup.Keywords(t, rec.Author), t != ""
	}},
}

// CleanTitle drops a parenthetical annotation such as "(2nd edition)" from
// a title.
func CleanTitle(title string) string {
	clean, _, _ := strings.Cut(title, "(")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return strings.TrimSpace(title)
	}
	return clean
}

// Enrich fills empty fields of rec in place and returns it. Records that
// already have an ISBN, page count and description are returned without a
// lookup. Service failures are logged and never returned.
func (c *Cascade) Enrich(ctx context.Context, rec *models.Record) *models.Record {
	if rec.EnrichmentSatisfied() {
		return rec
	}

	vol, via := c.find(ctx, rec)
	if vol == nil {
		slog.Info("No match found", "title", rec.Title, "source", rec.Source)
		return rec
	}

	slog.Info("Found match", "title", rec.Title, "strategy", via, "match", vol.Title)
	Apply(rec, vol)
	return rec
}

func (c *Cascade) find(ctx context.Context, rec *models.Record) (*lookup.Volume, string) {
	for _, s := range strategies {
		q, ok := s.query(rec)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			return nil, ""
		}

		vol, err := c.Searcher.Search(ctx, q)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, ""
			}
			slog.Warn("Lookup failed", "query", q.String(), "strategy", s.name, "err", err)
			continue
		}
		if vol != nil {
			return vol, s.name
		}
	}
	return nil, ""
}

// Apply copies volume metadata into the empty fields of rec. Populated fields
// are never overwritten.
func Apply(rec *models.Record, vol *lookup.Volume) {
	if rec.ISBN == "" {
		rec.ISBN = vol.ISBN()
	}
	if rec.PageCount == 0 && vol.PageCount > 0 {
		rec.PageCount = vol.PageCount
	}
	if rec.Publisher == "" {
		rec.Publisher = vol.Publisher
	}
	if rec.PublishedAt == "" {
		rec.PublishedAt = vol.PublishedDate
	}
	if rec.Description == "" {
		rec.Description = vol.Description
	}
	if len(rec.Category) == 0 && len(vol.Categories) > 0 {
		rec.Category = append([]string{}, vol.Categories...)
	}
	if rec.CoverImage == "" {
		rec.CoverImage = vol.ImageLinks.Thumbnail
	}
}
