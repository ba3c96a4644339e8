package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "amharic-books",
		Short: "Aggregate Amharic book metadata from online catalogs",
		Long: `amharic-books collects Amharic book listings from several online bookstores
and catalogs, normalizes them into one schema, drops duplicate titles and fills
missing metadata from a public book metadata service.

Settings are read from amharic-books.yaml (or --config), then the environment,
then command-line flags.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default amharic-books.yaml if present)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Verbose logging")

	cmd.AddCommand(newScrapeCmd(opts))
	cmd.AddCommand(newEnrichCmd(opts))
	cmd.AddCommand(newSourcesCmd())

	return cmd
}
