// Package export writes the aggregated records to a dataset file and reads
// them back for re-enrichment.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

// Format is a dataset file format.
type Format string

const (
	CSV     Format = "csv"
	JSONL   Format = "jsonl"
	Parquet Format = "parquet"
	SQLite  Format = "sqlite"
)

// DefaultPath is where a run writes its dataset unless configured otherwise.
const DefaultPath = "data/ethiopian_books.csv"

// CategorySeparator joins categories in flat formats.
const CategorySeparator = "|"

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{CSV, JSONL, Parquet, SQLite}
}

// Detect picks a format from an explicit name, falling back to the file
// extension of path.
func Detect(path, name string) (Format, error) {
	if name != "" {
		f := Format(strings.ToLower(name))
		if slices.Contains(Formats(), f) {
			return f, nil
		}
		supported := make([]string, 0, len(Formats()))
		for _, f := range Formats() {
			supported = append(supported, string(f))
		}
		return "", fmt.Errorf("unsupported output format: %s (supported: %s)", name, strings.Join(supported, ", "))
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return CSV, nil
	case ".jsonl", ".json", ".ndjson":
		return JSONL, nil
	case ".parquet":
		return Parquet, nil
	case ".sqlite", ".sqlite3", ".db":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported file format: %s (supported: .csv, .jsonl, .parquet, .sqlite)", ext)
	}
}

// Save writes records to path in the given format, creating the parent
// directory when needed. An empty format is detected from the extension.
func Save(ctx context.Context, path string, format Format, records []*models.Record) error {
	if format == "" {
		f, err := Detect(path, "")
		if err != nil {
			return err
		}
		format = f
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	slog.Debug("Writing dataset", "path", path, "format", format, "records", len(records))

	var err error
	switch format {
	case CSV:
		err = writeCSV(path, records)
	case JSONL:
		err = writeJSONL(path, records)
	case Parquet:
		err = writeParquet(path, records)
	case SQLite:
		err = writeSQLite(ctx, path, records)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Load reads a dataset written by Save, choosing the reader by extension.
func Load(ctx context.Context, path string) ([]*models.Record, error) {
	format, err := Detect(path, "")
	if err != nil {
		return nil, err
	}

	var records []*models.Record
	switch format {
	case CSV:
		records, err = loadCSV(path)
	case JSONL:
		records, err = loadJSONL(path)
	case Parquet:
		records, err = loadParquet(path)
	case SQLite:
		records, err = loadSQLite(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec.Category == nil {
			rec.Category = []string{}
		}
	}
	slog.Debug("Loaded dataset", "path", path, "format", format, "records", len(records))
	return records, nil
}

// row flattens a record into the column order of models.Columns.
func row(r *models.Record) []string {
	pages := ""
	if r.PageCount > 0 {
		pages = strconv.Itoa(r.PageCount)
	}
	return []string{
		r.Title,
		r.TitleEn,
		r.TitleRomanized,
		r.Author,
		r.AuthorRomanized,
		r.Description,
		r.PublishedAt,
		r.Language,
		pages,
		r.CoverImage,
		r.Publisher,
		r.ISBN,
		r.Source,
		r.URL,
		strings.Join(r.Category, CategorySeparator),
	}
}

// fromRow builds a record from column values keyed by column name.
func fromRow(get func(column string) string) (*models.Record, error) {
	r := &models.Record{
		Title:           get("title"),
		TitleEn:         get("title_en"),
		TitleRomanized:  get("title_romanized"),
		Author:          get("author"),
		AuthorRomanized: get("author_romanized"),
		Description:     get("description"),
		PublishedAt:     get("published_at"),
		Language:        get("language"),
		CoverImage:      get("cover_image"),
		Publisher:       get("publisher"),
		ISBN:            get("isbn"),
		Source:          get("source"),
		URL:             get("url"),
		Category:        splitCategory(get("category")),
	}
	if pages := strings.TrimSpace(get("page_count")); pages != "" {
		n, err := strconv.Atoi(pages)
		if err != nil {
			return nil, fmt.Errorf("invalid page_count %q: %w", pages, err)
		}
		r.PageCount = n
	}
	return r, nil
}

func splitCategory(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, CategorySeparator)
}
