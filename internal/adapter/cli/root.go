// Package cli is the command-line interface over the saved display tests.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"adtest/internal/app"
	"adtest/internal/config"
)

var (
	driver     string
	sqlitePath string
)

// openApp builds the services for one command invocation.
var openApp = func(ctx context.Context, cfg config.Config, cmd *cobra.Command) (*app.App, error) {
	return app.New(ctx, cfg, app.NewLogger(cfg.Log, cmd.ErrOrStderr()))
}

// NewRootCmd assembles the adtest command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "adtest",
		Short: "Generate and manage display ad test pages",
		Long: `adtest turns uploaded ad creatives into self-contained HTML test pages.

Saved tests live in the configured key-value store (STORAGE_DRIVER) and can be
exported as a single HTML document or as a ZIP archive with an images folder.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&driver, "driver", "", "storage driver: postgres, sqlite or memory (default from STORAGE_DRIVER)")
	root.PersistentFlags().StringVar(&sqlitePath, "db", "", "sqlite database path (default from STORAGE_SQLITE_PATH)")

	root.AddCommand(
		newListCmd(),
		newShowCmd(),
		newCreateCmd(),
		newDeleteCmd(),
		newExportCmd(),
		newSeedCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
