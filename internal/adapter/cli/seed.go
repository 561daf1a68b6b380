package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"adtest/internal/app"
	"adtest/internal/db"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Save a demo test with generated creatives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				test, err := db.Seed(cmd.Context(), a.Tests)
				if err != nil {
					return fmt.Errorf("failed to seed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded test '%s' (%s)\n", test.Name, test.ID)
				return nil
			})
		},
	}
}
