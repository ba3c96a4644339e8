// Package report writes a YAML summary of each run next to its dataset.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/amharic-books/internal/aggregate"
)

// RunConfig records the settings a run used.
type RunConfig struct {
	Command        string   `yaml:"command"`
	Output         string   `yaml:"output"`
	Format         string   `yaml:"format"`
	Sources        []string `yaml:"sources"`
	Limit          int      `yaml:"limit"`
	ExcludeAuthors []string `yaml:"exclude_authors,omitempty"`
	Service        string   `yaml:"service"`
	Transliterator string   `yaml:"transliterator"`
	Concurrency    int      `yaml:"concurrency"`
}

// RunReport is the document written for one run.
type RunReport struct {
	Config  RunConfig         `yaml:"config"`
	Summary aggregate.Summary `yaml:"summary"`
	Records int               `yaml:"records"`
}

// Save writes the report to dir as <timestamp>-<run id>.yaml and returns the
// file path.
func Save(dir string, r RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	started := r.Summary.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", started.Format("2006-01-02_15-04-05"), r.Summary.RunID))

	data, err := yaml.Marshal(&r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}
