package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
)

func writeCSV(path string, records []*models.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.Columns); err != nil {
		f.Close()
		return err
	}
	for _, r := range records {
		if err := w.Write(row(r)); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadCSV(path string) ([]*models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	if _, ok := index["title"]; !ok {
		return nil, fmt.Errorf("missing title column in %s", path)
	}

	var records []*models.Record
	for line := 2; ; line++ {
		values, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV at line %d: %w", line, err)
		}

		rec, err := fromRow(func(column string) string {
			if i, ok := index[column]; ok && i < len(values) {
				return values[i]
			}
			return ""
		})
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV at line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
