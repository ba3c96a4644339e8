package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/amharic-books/internal/aggregate"
)

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	started := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	in := RunReport{
		Config: RunConfig{
			Command:        "scrape",
			Output:         "data/ethiopian_books.csv",
			Format:         "csv",
			Sources:        []string{"mereb", "goodreads"},
			Limit:          100,
			Service:        "googlebooks",
			Transliterator: "rules",
			Concurrency:    5,
		},
		Summary: aggregate.Summary{
			RunID:      "3f1c9a4e-0000-4000-8000-000000000000",
			StartedAt:  started,
			FinishedAt: started.Add(2 * time.Minute),
			Sources: []aggregate.SourceStats{
				{Name: "mereb", Collected: 40, Admitted: 38, Duration: 12 * time.Second},
				{Name: "goodreads", Error: "goodreads returned status 503"},
			},
			Accepted:   38,
			Candidates: 30,
			Enriched:   12,
		},
		Records: 38,
	}

	path, err := Save(dir, in)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "2026-10-18_09-30-00-3f1c9a4e-0000-4000-8000-000000000000.yaml" {
		t.Errorf("Unexpected report name %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	for _, want := range []string{"run_id:", "enrichment_candidates: 30", "error: goodreads returned status 503"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected report to contain %q:\n%s", want, data)
		}
	}

	var out RunReport
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("Failed to parse report: %v", err)
	}
	if out.Summary.RunID != in.Summary.RunID || out.Summary.Enriched != 12 || len(out.Summary.Sources) != 2 {
		t.Errorf("Unexpected report: %+v", out)
	}
	if out.Summary.Sources[0].Duration != 12*time.Second {
		t.Errorf("Expected duration to survive, got %v", out.Summary.Sources[0].Duration)
	}
	if !out.Summary.StartedAt.Equal(started) {
		t.Errorf("Expected start time %v, got %v", started, out.Summary.StartedAt)
	}
}
