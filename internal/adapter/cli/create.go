package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"adtest/internal/app"
	"adtest/internal/core/domain"
	"adtest/internal/core/ingest"
)

func newCreateCmd() *cobra.Command {
	var (
		clickURL string
		imp1     string
		imp2     string
		author   string
	)

	cmd := &cobra.Command{
		Use:   "create <name> <image>...",
		Short: "Create a test from image files",
		Long: `Create and save a display test from one or more image files.

Tracking flags apply to every creative. Files that are not JPG, PNG, GIF or
WebP, or that exceed the configured size limit, are skipped with a warning.

Examples:
  adtest create "Spring Launch" banner.png skyscraper.jpg
  adtest create retargeting ad.gif --click https://example.com --imp1 https://px.example.com/i`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, paths := args[0], args[1:]

			files := make([]ingest.RawFile, 0, len(paths))
			for _, p := range paths {
				data, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", p, err)
				}
				files = append(files, ingest.RawFile{Name: filepath.Base(p), Data: data})
			}

			return withApp(cmd, func(a *app.App) error {
				ctx := cmd.Context()
				drafts := a.Drafts

				draft, err := drafts.Create(ctx, name, &domain.Session{Username: author})
				if err != nil {
					return err
				}
				defer func() { _ = drafts.Discard(ctx, draft.ID) }()

				res, err := drafts.AddFiles(ctx, draft.ID, files)
				if err != nil {
					return fmt.Errorf("failed to add files: %w", err)
				}
				for _, r := range res.Rejected {
					fmt.Fprintf(cmd.ErrOrStderr(), "Skipped: %s\n", r.Message)
				}

				tracking := domain.Tracking{ClickURL: clickURL, ImpressionURL1: imp1, ImpressionURL2: imp2}
				if tracking != (domain.Tracking{}) {
					if _, err = drafts.ApplyGlobalTracking(ctx, draft.ID, tracking); err != nil {
						return err
					}
				}

				test, err := drafts.Save(ctx, draft.ID)
				if err != nil {
					var vErr *domain.ValidationError
					if errors.As(err, &vErr) {
						return errors.New(vErr.Message)
					}
					return fmt.Errorf("failed to save test: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created test '%s' (%s) with %d creatives:\n", test.Name, test.ID, test.CreativeCount)
				for i, c := range test.Creatives {
					fmt.Fprintf(out, "  %d: %s (%s)\n", i+1, c.File.Name, dimensionsLabel(c))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&clickURL, "click", "", "click URL for every creative")
	cmd.Flags().StringVar(&imp1, "imp1", "", "first impression URL for every creative")
	cmd.Flags().StringVar(&imp2, "imp2", "", "second impression URL for every creative")
	cmd.Flags().StringVar(&author, "author", "", "author recorded on the test (default \"Unknown\")")
	return cmd
}
