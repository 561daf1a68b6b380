package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"adtest/internal/app"
	"adtest/internal/core/domain"
)

func newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved test and its creatives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown format %q (use text, json or yaml)", format)
			}

			return withApp(cmd, func(a *app.App) error {
				test, err := a.Tests.Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to load test: %w", err)
				}
				if test == nil {
					return fmt.Errorf("test not found: %s", args[0])
				}

				out := cmd.OutOrStdout()
				switch format {
				case "json":
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(test)
				case "yaml":
					enc := yaml.NewEncoder(out)
					enc.SetIndent(2)
					if err = enc.Encode(test); err != nil {
						return err
					}
					return enc.Close()
				default:
					printTest(out, test)
					return nil
				}
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func printTest(w io.Writer, t *domain.GeneratedTest) {
	created := t.Time()
	fmt.Fprintf(w, "Name:      %s\n", t.Name)
	fmt.Fprintf(w, "ID:        %s\n", t.ID)
	fmt.Fprintf(w, "Author:    %s\n", t.Author)
	fmt.Fprintf(w, "Created:   %s (%s)\n", created.Format("2006-01-02 15:04:05 MST"), humanize.Time(created))
	fmt.Fprintf(w, "Creatives: %d\n", t.CreativeCount)

	for i, c := range t.Creatives {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "#%d %s\n", i+1, c.File.Name)
		fmt.Fprintf(w, "   %s • %d KB\n", dimensionsLabel(c), c.File.SizeKB())
		fmt.Fprintf(w, "   Click URL: %s\n", orNone(c.ClickURL))
		fmt.Fprintf(w, "   Imp 1:     %s\n", orNone(c.ImpressionURL1))
		fmt.Fprintf(w, "   Imp 2:     %s\n", orNone(c.ImpressionURL2))
	}
}

func dimensionsLabel(c domain.Creative) string {
	if !c.HasDimensions() {
		return "Unknown dimensions"
	}
	return fmt.Sprintf("%d×%d pixels", c.Dimensions.Width, c.Dimensions.Height)
}
