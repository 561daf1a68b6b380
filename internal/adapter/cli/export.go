package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"adtest/internal/app"
	"adtest/internal/core/port"
)

func newExportCmd() *cobra.Command {
	var (
		asZip  bool
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a test as HTML or ZIP",
		Long: `Export a saved test.

By default a single self-contained HTML file (test_<name>.html) is written.
With --zip an archive (test_<name>.zip) holding index.html and an images
folder is written instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				var (
					dl  *port.Download
					err error
				)
				if asZip {
					dl, err = a.Tests.Package(cmd.Context(), args[0])
				} else {
					dl, err = a.Tests.RenderHTML(cmd.Context(), args[0])
				}
				if err != nil {
					return fmt.Errorf("failed to export test: %w", err)
				}

				if err = os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
				path, err := exportPath(outDir, dl.FileName)
				if err != nil {
					return err
				}
				if err = os.WriteFile(path, dl.Data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", path, humanize.Bytes(uint64(len(dl.Data))))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asZip, "zip", false, "export a ZIP archive instead of HTML")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

// exportPath places name directly inside dir. Test names are free text, so
// path separators in the derived file name are flattened to underscores.
func exportPath(dir, name string) (string, error) {
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	path := filepath.Join(dir, name)

	if filepath.Dir(path) != filepath.Clean(dir) || filepath.Base(path) != name {
		return "", fmt.Errorf("refusing to write %q outside %s", name, dir)
	}
	return path, nil
}
