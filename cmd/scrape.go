package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/amharic-books/internal/aggregate"
	"github.com/lehigh-university-libraries/amharic-books/internal/config"
	"github.com/lehigh-university-libraries/amharic-books/internal/dedup"
	"github.com/lehigh-university-libraries/amharic-books/internal/export"
	"github.com/lehigh-university-libraries/amharic-books/internal/normalize"
	"github.com/lehigh-university-libraries/amharic-books/internal/report"
	"github.com/lehigh-university-libraries/amharic-books/internal/sources"
)

func newScrapeCmd(opts *globalOptions) *cobra.Command {
	var (
		limit          int
		excludeAuthors []string
		output         string
		format         string
		sourceNames    []string
		noEnrich       bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Collect, deduplicate and enrich Amharic book records",
		Long: `Scrape every configured source in order, normalize each record, keep the
first record seen for each title and fill missing ISBN, page count and publisher
from the metadata service. The dataset is written to --output and a YAML run
report is written to the report directory.`,
		Example: `  # Collect up to 50 books per source into the default CSV
  amharic-books scrape --limit 50

  # Skip an author and write Parquet
  amharic-books scrape --exclude-author "^unknown$" --output data/books.parquet

  # Only Goodreads, without enrichment
  amharic-books scrape --sources goodreads --no-enrich --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("limit") {
				cfg.Scrape.Limit = limit
			}
			cfg.Scrape.ExcludeAuthors = append(cfg.Scrape.ExcludeAuthors, excludeAuthors...)
			if flags.Changed("output") {
				cfg.Output.Path = output
				if !flags.Changed("format") {
					cfg.Output.Format = ""
				}
			}
			if flags.Changed("format") {
				cfg.Output.Format = format
			}
			if flags.Changed("sources") {
				cfg.Scrape.Sources = sourceNames
			}
			if noEnrich {
				cfg.Enrich.Enabled = false
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return runScrape(cmd, cfg)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum records per source (0 for no limit)")
	cmd.Flags().StringArrayVar(&excludeAuthors, "exclude-author", nil, "Regular expression for authors to skip (repeatable)")
	cmd.Flags().StringVar(&output, "output", export.DefaultPath, "Output dataset path (.csv, .jsonl, .parquet or .sqlite)")
	cmd.Flags().StringVar(&format, "format", "", "Output format, overriding the file extension")
	cmd.Flags().StringSliceVar(&sourceNames, "sources", nil, "Comma separated sources to scrape (default all)")
	cmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "Skip the metadata enrichment phase")

	return cmd
}

func runScrape(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	format, err := export.Detect(cfg.Output.Path, cfg.Output.Format)
	if err != nil {
		return err
	}

	adapters, err := sources.Build(cfg.Scrape.Sources, sources.Options{
		HTTPClient: httpClient(cfg.Scrape),
		UserAgent:  cfg.Scrape.UserAgent,
		Delay:      cfg.Scrape.Delay,
		BaseURLs:   cfg.Scrape.BaseURLs,
	})
	if err != nil {
		return err
	}

	conv, err := newConverter(cfg.Transliteration)
	if err != nil {
		return err
	}

	dd, err := dedup.New(dedup.Policy{
		ExcludeAuthors: cfg.Scrape.ExcludeAuthors,
		MatchRomanized: cfg.Dedup.MatchRomanized,
	})
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	driver := &aggregate.Driver{
		Adapters:    adapters,
		Normalizer:  normalize.New(conv, conv),
		Dedup:       dd,
		Limit:       cfg.Scrape.Limit,
		Concurrency: cfg.Enrich.Concurrency,
		Progress:    logProgress,
	}
	if cfg.Enrich.Enabled {
		cascade, err := newEnricher(ctx, cfg.Enrich)
		if err != nil {
			return err
		}
		driver.Enricher = cascade
	}

	result, err := driver.Run(ctx)
	if err != nil {
		return err
	}

	if err := export.Save(ctx, cfg.Output.Path, format, result.Records); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d records to %s (%s)\n", len(result.Records), cfg.Output.Path, strings.ToUpper(string(format)))

	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	path, err := report.Save(cfg.Output.ReportDir, report.RunReport{
		Config: report.RunConfig{
			Command:        "scrape",
			Output:         cfg.Output.Path,
			Format:         string(format),
			Sources:        names,
			Limit:          cfg.Scrape.Limit,
			ExcludeAuthors: cfg.Scrape.ExcludeAuthors,
			Service:        enrichService(cfg.Enrich),
			Transliterator: cfg.Transliteration.Provider,
			Concurrency:    cfg.Enrich.Concurrency,
		},
		Summary: result.Summary,
		Records: len(result.Records),
	})
	if err != nil {
		// the dataset is already written
		slog.Warn("Failed to write run report", "err", err)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run report: %s\n", path)
	return nil
}

func enrichService(cfg config.Enrich) string {
	if !cfg.Enabled {
		return "none"
	}
	return cfg.Service
}
