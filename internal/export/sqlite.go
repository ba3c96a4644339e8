package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

const createBooks = `CREATE TABLE books (
	position INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	title_en TEXT,
	title_romanized TEXT,
	author TEXT,
	author_romanized TEXT,
	description TEXT,
	published_at TEXT,
	language TEXT,
	page_count INTEGER,
	cover_image TEXT,
	publisher TEXT,
	isbn TEXT,
	source TEXT,
	url TEXT,
	category TEXT
)`

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// writeSQLite replaces the books table with records, keeping their order in
// the position column.
func writeSQLite(ctx context.Context, path string, records []*models.Record) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS books`); err != nil {
		return fmt.Errorf("drop books: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createBooks); err != nil {
		return fmt.Errorf("create books: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(models.Columns)+1), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO books (position, %s) VALUES (%s)",
		strings.Join(models.Columns, ", "), placeholders,
	))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var pages any
		if r.PageCount > 0 {
			pages = r.PageCount
		}
		_, err := stmt.ExecContext(ctx,
			i,
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
		)
		if err != nil {
			return fmt.Errorf("insert %q: %w", r.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func loadSQLite(ctx context.Context, path string) ([]*models.Record, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT %s FROM books ORDER BY position", strings.Join(models.Columns, ", "))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		values := make([]sql.NullString, len(models.Columns))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}

		byName := make(map[string]string, len(values))
		for i, column := range models.Columns {
			byName[column] = values[i].String
		}
		rec, err := fromRow(func(column string) string { return byName[column] })
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read books: %w", err)
	}
	return records, nil
}
