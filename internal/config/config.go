// Package config loads run settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/amharic-books/internal/export"
	"github.com/lehigh-university-libraries/amharic-books/internal/sources"
)

// DefaultFile is read when no config path is given and the file exists.
const DefaultFile = "amharic-books.yaml"

type Config struct {
	Output          Output          `yaml:"output"`
	Scrape          Scrape          `yaml:"scrape"`
	Dedup           Dedup           `yaml:"dedup"`
	Enrich          Enrich          `yaml:"enrich"`
	Transliteration Transliteration `yaml:"transliteration"`
}

type Output struct {
	Path string `yaml:"path"`
	// Format overrides detection from the path extension.
	Format    string `yaml:"format"`
	ReportDir string `yaml:"report_dir"`
}

type Scrape struct {
	// Sources selects adapters by name; empty means all.
	Sources        []string          `yaml:"sources"`
	Limit          int               `yaml:"limit"`
	Delay          time.Duration     `yaml:"delay"`
	Timeout        time.Duration     `yaml:"timeout"`
	UserAgent      string            `yaml:"user_agent"`
	ExcludeAuthors []string          `yaml:"exclude_authors"`
	BaseURLs       map[string]string `yaml:"base_urls"`
}

type Dedup struct {
	MatchRomanized bool `yaml:"match_romanized"`
}

type Enrich struct {
	Enabled bool `yaml:"enabled"`
	// Service is googlebooks or openlibrary.
	Service        string        `yaml:"service"`
	APIKey         string        `yaml:"api_key"`
	Concurrency    int           `yaml:"concurrency"`
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	PoliteDelay    time.Duration `yaml:"polite_delay"`
}

type Transliteration struct {
	// Provider is rules, gemini, openai or ollama.
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	OllamaURL    string `yaml:"ollama_url"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
}

var (
	services  = []string{"googlebooks", "openlibrary"}
	providers = []string{"rules", "gemini", "openai", "ollama"}
)

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Output: Output{
			Path:      export.DefaultPath,
			ReportDir: "data/reports",
		},
		Scrape: Scrape{
			Limit:   100,
			Delay:   time.Second,
			Timeout: 30 * time.Second,
		},
		Dedup: Dedup{MatchRomanized: true},
		Enrich: Enrich{
			Enabled:        true,
			Service:        "googlebooks",
			Concurrency:    5,
			MaxAttempts:    3,
			InitialBackoff: 2 * time.Second,
			PoliteDelay:    time.Second,
		},
		Transliteration: Transliteration{
			Provider:  "rules",
			OllamaURL: "http://localhost:11434",
		},
	}
}

// Load reads path over the defaults. An empty path reads DefaultFile when it
// exists and otherwise returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("GOOGLE_BOOKS_API_KEY"); v != "" {
		c.Enrich.APIKey = v
	}
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.Transliteration.GeminiAPIKey = v
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.Transliteration.OpenAIAPIKey = v
	}
	if v := getenv("OLLAMA_URL"); v != "" {
		c.Transliteration.OllamaURL = v
	}
	if v := getenv("AMHARIC_BOOKS_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AMHARIC_BOOKS_CONCURRENCY %q: %w", v, err)
		}
		c.Enrich.Concurrency = n
	}
	if v := getenv("AMHARIC_BOOKS_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AMHARIC_BOOKS_LIMIT %q: %w", v, err)
		}
		c.Scrape.Limit = n
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("output path is required")
	}
	if _, err := export.Detect(c.Output.Path, c.Output.Format); err != nil {
		return err
	}
	for _, name := range c.Scrape.Sources {
		if !slices.Contains(sources.Names(), strings.ToLower(strings.TrimSpace(name))) {
			return fmt.Errorf("unknown source %q (available: %s)", name, strings.Join(sources.Names(), ", "))
		}
	}
	if c.Scrape.Delay < 0 {
		return errors.New("scrape delay must not be negative")
	}
	if c.Enrich.Concurrency < 1 {
		return fmt.Errorf("enrichment concurrency must be at least 1, got %d", c.Enrich.Concurrency)
	}
	if c.Enrich.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.Enrich.MaxAttempts)
	}
	if !slices.Contains(services, c.Enrich.Service) {
		return fmt.Errorf("unknown metadata service %q (available: %s)", c.Enrich.Service, strings.Join(services, ", "))
	}
	if !slices.Contains(providers, c.Transliteration.Provider) {
		return fmt.Errorf("unknown transliteration provider %q (available: %s)", c.Transliteration.Provider, strings.Join(providers, ", "))
	}
	switch c.Transliteration.Provider {
	case "gemini":
		if c.Transliteration.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini transliteration provider")
		}
	case "openai":
		if c.Transliteration.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai transliteration provider")
		}
	}
	return nil
}
