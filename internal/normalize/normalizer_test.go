package normalize

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/lehigh-university-libraries/amharic-books/internal/models"
	"github.com/lehigh-university-libraries/amharic-books/internal/script"
)

type failingConverter struct{}

func (failingConverter) Transliterate(context.Context, string) (string, error) {
	return "", script.ErrUnsupported
}

func (failingConverter) Romanize(context.Context, string) (string, error) {
	return "", errors.New("romanizer unavailable")
}

func TestNormalize(t *testing.T) {
	rules := script.NewRules()

	tests := []struct {
		name     string
		input    models.Record
		expected models.Record
	}{
		{
			name:  "latin author is transliterated and kept as romanized",
			input: models.Record{Title: "መጽሐፍ አንድ", Author: "Alemayehu", Source: "goodreads"},
			expected: models.Record{
				Title:           "መጽሐፍ አንድ",
				TitleRomanized:  "metsihaf and",
				Author:          "አለማየሁ",
				AuthorRomanized: "Alemayehu",
				Language:        "am",
				Source:          "goodreads",
				Category:        []string{},
			},
		},
		{
			name:  "ethiopic author is romanized",
			input: models.Record{Title: "  መጽሐፍ አንድ ", Author: "አለማየሁ", Language: "en", Category: []string{"Fiction"}},
			expected: models.Record{
				Title:           "መጽሐፍ አንድ",
				TitleRomanized:  "metsihaf and",
				Author:          "አለማየሁ",
				AuthorRomanized: "alemayehu",
				Language:        "en",
				Category:        []string{"Fiction"},
			},
		},
		{
			name:  "existing romanized fields are kept",
			input: models.Record{Title: "መጽሐፍ አንድ", TitleRomanized: "Metshaf And", Author: "አለማየሁ", AuthorRomanized: "Alemayehu"},
			expected: models.Record{
				Title:           "መጽሐፍ አንድ",
				TitleRomanized:  "Metshaf And",
				Author:          "አለማየሁ",
				AuthorRomanized: "Alemayehu",
				Language:        "am",
				Category:        []string{},
			},
		},
		{
			name:  "missing author stays empty",
			input: models.Record{Title: "መጽሐፍ አንድ"},
			expected: models.Record{
				Title:          "መጽሐፍ አንድ",
				TitleRomanized: "metsihaf and",
				Language:       "am",
				Category:       []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(rules, rules)
			rec := tt.input
			got := n.Normalize(context.Background(), &rec)
			if got != &rec {
				t.Error("Expected Normalize to return the same record")
			}
			if !reflect.DeepEqual(*got, tt.expected) {
				t.Errorf("Expected %+v, got %+v", tt.expected, *got)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	rules := script.NewRules()
	n := New(rules, rules)

	inputs := []models.Record{
		{Title: "መጽሐፍ አንድ", Author: "Alemayehu"},
		{Title: "Oromay", Author: "Baalu Girma"},
		{Title: "ፍቅር", Author: "Иван"},
	}

	for _, input := range inputs {
		first := input
		once := n.Normalize(context.Background(), &first)
		second := *once
		twice := n.Normalize(context.Background(), &second)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %q:\nonce:  %+v\ntwice: %+v", input.Title, once, twice)
		}
	}
}

func TestNormalizeConversionFailures(t *testing.T) {
	n := New(failingConverter{}, failingConverter{})
	rec := &models.Record{Title: "ፍቅር", Author: "Haddis Alemayehu"}

	n.Normalize(context.Background(), rec)

	if rec.Author != "Haddis Alemayehu" {
		t.Errorf("Expected author untouched after failed transliteration, got %q", rec.Author)
	}
	if rec.AuthorRomanized != "Haddis Alemayehu" {
		t.Errorf("Expected original author preserved as romanized, got %q", rec.AuthorRomanized)
	}
	if rec.TitleRomanized != "" {
		t.Errorf("Expected empty romanized title after failure, got %q", rec.TitleRomanized)
	}
	if rec.Category == nil {
		t.Error("Expected non-nil category")
	}
}
