package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

func writeParquet(path string, records []*models.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	rows := make([]models.Record, len(records))
	for i, r := range records {
		rows[i] = *r
	}

	w := parquet.NewGenericWriter[models.Record](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadParquet(path string) ([]*models.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[models.Record](pf)
	defer reader.Close()

	var records []*models.Record
	for {
		// fresh batch so category slices are not shared between rows
		rows := make([]models.Record, 128)
		n, err := reader.Read(rows)
		for i := 0; i < n; i++ {
			rec := rows[i]
			records = append(records, &rec)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return records, nil
}
