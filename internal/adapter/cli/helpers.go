package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"adtest/internal/app"
	"adtest/internal/config"
)

// withApp loads configuration, opens the store, executes fn and handles
// cleanup.
func withApp(cmd *cobra.Command, fn func(*app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if driver != "" {
		cfg.Storage.Driver = driver
	}
	if sqlitePath != "" {
		cfg.Storage.SQLitePath = sqlitePath
	}
	if err = cfg.Storage.Validate(); err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), cfg, cmd)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer a.Close()

	return fn(a)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
