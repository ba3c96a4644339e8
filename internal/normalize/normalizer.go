// Package normalize brings records from every source into the canonical shape
// before deduplication.
package normalize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
	"github.com/lehigh-university-libraries/amharic-books/internal/script"
)

// Normalizer fills script variants and defaults on a record.
type Normalizer struct {
	Transliterator script.Transliterator
	Romanizer      script.Romanizer
	Language       string
}

// New returns a Normalizer with the default target language.
func New(t script.Transliterator, r script.Romanizer) *Normalizer {
	return &Normalizer{
		Transliterator: t,
		Romanizer:      r,
		Language:       models.DefaultLanguage,
	}
}

// Normalize updates rec in place and returns it. Conversion failures are
// logged and leave the affected field as it was, so the call never fails.
// Running it twice gives the same record as running it once.
func (n *Normalizer) Normalize(ctx context.Context, rec *models.Record) *models.Record {
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Author = strings.TrimSpace(rec.Author)

	if rec.Author != "" && !script.HasEthiopic(rec.Author) {
		n.nativeAuthor(ctx, rec)
	}

	if rec.TitleRomanized == "" && rec.Title != "" {
		rec.TitleRomanized = n.romanize(ctx, rec.Title, "title")
	}
	if rec.AuthorRomanized == "" && rec.Author != "" {
		rec.AuthorRomanized = n.romanize(ctx, rec.Author, "author")
	}

	if rec.Language == "" {
		rec.Language = n.language()
	}
	if rec.Category == nil {
		rec.Category = []string{}
	}

	return rec
}

// nativeAuthor moves a Latin author name to AuthorRomanized and replaces it
// with its Ethiopic transliteration.
func (n *Normalizer) nativeAuthor(ctx context.Context, rec *models.Record) {
	latin := rec.Author
	rec.AuthorRomanized = latin
	if n.Transliterator == nil {
		return
	}

	native, err := n.Transliterator.Transliterate(ctx, strings.ToLower(latin))
	if err != nil {
		slog.Warn("Failed to transliterate author", "author", latin, "source", rec.Source, "err", err)
		return
	}
	native = strings.TrimSpace(native)
	if native == "" {
		slog.Warn("Transliteration returned nothing", "author", latin, "source", rec.Source)
		return
	}
	rec.Author = native
}

func (n *Normalizer) romanize(ctx context.Context, text, field string) string {
	if n.Romanizer == nil {
		return ""
	}
	out, err := n.Romanizer.Romanize(ctx, text)
	if err != nil {
		slog.Debug("Failed to romanize", "field", field, "text", text, "err", err)
		return ""
	}
	return strings.TrimSpace(out)
}

func (n *Normalizer) language() string {
	if n.Language == "" {
		return models.DefaultLanguage
	}
	return n.Language
}
