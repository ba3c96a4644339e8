package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/amharic-books/internal/aggregate"
	"github.com/lehigh-university-libraries/amharic-books/internal/export"
	"github.com/lehigh-university-libraries/amharic-books/internal/report"
)

func newEnrichCmd(opts *globalOptions) *cobra.Command {
	var (
		input  string
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill missing metadata in an existing dataset",
		Long: `Load a dataset written by scrape and run only the enrichment phase over it.
Records keep their order. Records that already have an ISBN, page count and
publisher are left alone.`,
		Example: `  # Enrich in place
  amharic-books enrich --input data/ethiopian_books.csv

  # Enrich from Open Library into a new file
  amharic-books enrich --input data/books.jsonl --output data/books.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			if output == "" {
				output = input
			}
			cfg.Output.Path = output
			cfg.Output.Format = format
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx := cmd.Context()
			outFormat, err := export.Detect(output, format)
			if err != nil {
				return err
			}

			records, err := export.Load(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}
			slog.Info("Dataset loaded", "path", input, "records", len(records))

			cascade, err := newEnricher(ctx, cfg.Enrich)
			if err != nil {
				return err
			}

			summary := aggregate.Summary{
				RunID:     uuid.NewString(),
				StartedAt: time.Now(),
				Accepted:  len(records),
			}
			stats, err := aggregate.EnrichRecords(ctx, records, cascade, cfg.Enrich.Concurrency, logProgress)
			if err != nil {
				return err
			}
			summary.Candidates = stats.Candidates
			summary.Enriched = stats.Enriched
			summary.FinishedAt = time.Now()

			if err := export.Save(ctx, output, outFormat, records); err != nil {
				return err
			}

			path, err := report.Save(cfg.Output.ReportDir, report.RunReport{
				Config: report.RunConfig{
					Command:        "enrich",
					Output:         output,
					Format:         string(outFormat),
					Service:        cfg.Enrich.Service,
					Transliterator: cfg.Transliteration.Provider,
					Concurrency:    cfg.Enrich.Concurrency,
				},
				Summary: summary,
				Records: len(records),
			})
			if err != nil {
				slog.Warn("Failed to write run report", "err", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Enriched %d of %d candidate records, saved %d records to %s\n", stats.Enriched, stats.Candidates, len(records), output)
			if path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Run report: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Dataset to enrich (.csv, .jsonl, .parquet or .sqlite)")
	cmd.Flags().StringVar(&output, "output", "", "Where to write the enriched dataset (default: overwrite --input)")
	cmd.Flags().StringVar(&format, "format", "", "Output format, overriding the file extension")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
