package cli

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"adtest/internal/app"
)

// confirm asks a yes/no question. It is replaced in tests.
var confirm = func(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, fmt.Errorf("cancelled")
		}
		return false, err
	}
	return true, nil
}

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withApp(cmd, func(a *app.App) error {
				ctx := cmd.Context()
				test, err := a.Tests.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to load test: %w", err)
				}
				if test == nil {
					return fmt.Errorf("test not found: %s", id)
				}

				if !yes {
					ok, err := confirm(fmt.Sprintf("Delete test '%s' with %d creatives", test.Name, test.CreativeCount))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
						return nil
					}
				}

				if _, err = a.Tests.Delete(ctx, id); err != nil {
					return fmt.Errorf("failed to delete test: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted test '%s'.\n", test.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
