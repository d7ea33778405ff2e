package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/config"
)

func newResetCmd(flags *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore expansion, selection, scroll and mode to their defaults",
		Long: "reset rewrites the runtime and mode documents with their defaults.\n" +
			"Entries, style and flags are left alone.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDrive(cmd.Context(), *flags, func(cfg config.Config, d drive.Drive) error {
				if !yes {
					ok, err := confirmReset(cfg.Drive.Path)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "reset cancelled")
						return nil
					}
				}
				paths, err := drive.Reset(cmd.Context(), d, drive.Origin{})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reset %d documents\n", len(paths))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirmReset(path string) (bool, error) {
	ok := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset the explorer state?").
				Description("Drive: " + path).
				Value(&ok).
				Affirmative("Reset").
				Negative("Cancel"),
		),
	).WithTheme(huh.ThemeDracula())
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
