package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/lehigh-university-libraries/amharic-books/internal/aggregate"
	"github.com/lehigh-university-libraries/amharic-books/internal/config"
	"github.com/lehigh-university-libraries/amharic-books/internal/enrich"
	"github.com/lehigh-university-libraries/amharic-books/internal/lookup"
	"github.com/lehigh-university-libraries/amharic-books/internal/lookup/googlebooks"
	"github.com/lehigh-university-libraries/amharic-books/internal/lookup/openlibrary"
	"github.com/lehigh-university-libraries/amharic-books/internal/providers"
	"github.com/lehigh-university-libraries/amharic-books/internal/providers/gemini"
	"github.com/lehigh-university-libraries/amharic-books/internal/providers/ollama"
	"github.com/lehigh-university-libraries/amharic-books/internal/providers/openai"
	"github.com/lehigh-university-libraries/amharic-books/internal/script"
)

// loadConfig reads the config file and applies environment overrides.
// Flags are applied by the caller before validation.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// converter is implemented by both the rule tables and the LLM backend.
type converter interface {
	script.Transliterator
	script.Romanizer
}

func newConverter(cfg config.Transliteration) (converter, error) {
	var p providers.Provider
	switch cfg.Provider {
	case "", "rules":
		return script.NewRules(), nil
	case "gemini":
		p = gemini.New(cfg.GeminiAPIKey)
	case "openai":
		p = openai.New(cfg.OpenAIAPIKey)
	case "ollama":
		p = ollama.New(cfg.OllamaURL)
	default:
		return nil, fmt.Errorf("unsupported transliteration provider: %s", cfg.Provider)
	}
	slog.Debug("Using LLM transliteration", "provider", p.Name(), "model", cfg.Model)
	return script.NewLLM(p, cfg.Model), nil
}

// newEnricher builds the lookup cascade over the configured metadata
// service, wrapped in the rate-limit retrier.
func newEnricher(ctx context.Context, cfg config.Enrich) (*enrich.Cascade, error) {
	var s lookup.Searcher
	switch cfg.Service {
	case "", "googlebooks":
		c, err := googlebooks.New(ctx, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		s = c
	case "openlibrary":
		s = openlibrary.New()
	default:
		return nil, fmt.Errorf("unsupported metadata service: %s", cfg.Service)
	}

	r := lookup.NewRetrier(s)
	r.MaxAttempts = cfg.MaxAttempts
	r.InitialBackoff = cfg.InitialBackoff
	r.PoliteDelay = cfg.PoliteDelay
	r.OnTransition = func(from, to lookup.State) {
		slog.Debug("Lookup state", "from", from, "to", to)
	}
	return enrich.New(r), nil
}

func logProgress(p aggregate.Progress) {
	slog.Info("Enriched record", "progress", fmt.Sprintf("%d/%d", p.Done, p.Total), "title", p.Title, "filled", p.Filled)
}

func httpClient(cfg config.Scrape) *http.Client {
	if cfg.Timeout <= 0 {
		return nil
	}
	return &http.Client{Timeout: cfg.Timeout}
}
