package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"adtest/internal/app"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				tests, err := a.Tests.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list tests: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(tests) == 0 {
					fmt.Fprintln(out, "No tests saved yet.")
					fmt.Fprintln(out, "Create one with: adtest create <name> <image>...")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCREATIVES\tAUTHOR\tCREATED")
				for _, t := range tests {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
						t.ID,
						t.Name,
						t.CreativeCount,
						t.Author,
						humanize.Time(t.Time()),
					)
				}
				return w.Flush()
			})
		},
	}
}
