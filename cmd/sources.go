package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/amharic-books/internal/sources"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the available sources in run order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION\tBASE URL")
			for _, s := range sources.Available() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.Description, s.BaseURL)
			}
			return w.Flush()
		},
	}
}
