package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/export"
	"github.com/vanderheijden86/hubtree/pkg/hooks"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		opts    export.Options
		noHooks bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current tree as text, SVG or PNG",
		Long: "export draws the tree the explorer would show. File exports run the\n" +
			"pre-export and post-export hooks of hooks.yaml in the config directory.",
		Example: "  hubtree export -o tree.svg\n" +
			"  hubtree export -o tree.png --title \"project map\"",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDrive(cmd.Context(), *flags, func(cfg config.Config, d drive.Drive) error {
				s, err := loadSnapshot(cmd.Context(), d, cfg)
				if err != nil {
					return err
				}
				o := opts
				o.Rows, o.Entries, o.States, o.Tracker = s.Rows, s.Entries, s.States, s.Tracker
				if o.Path == "" || o.Path == "-" {
					return export.WriteText(cmd.OutOrStdout(), o)
				}

				format, err := export.FormatFor(o.Format, o.Path)
				if err != nil {
					return err
				}
				exec, err := hooks.RunHooks(config.ConfigDir(), hooks.ExportContext{
					ExportPath:   o.Path,
					ExportFormat: string(format),
					RowCount:     len(o.Rows),
					Timestamp:    time.Now(),
				}, noHooks)
				if err != nil {
					return err
				}
				if exec != nil {
					if err := exec.Run(cmd.Context(), hooks.PreExport); err != nil {
						return fmt.Errorf("export cancelled: %w", err)
					}
				}
				if err := export.Save(o); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(o.Rows), o.Path)
				if exec != nil {
					if err := exec.Run(cmd.Context(), hooks.PostExport); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), exec.Summary())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Path, "output", "o", "", "output file (stdout when empty)")
	cmd.Flags().StringVar(&opts.Format, "format", "", "text, svg or png (default: from the file extension)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title drawn above SVG and PNG exports")
	cmd.Flags().BoolVar(&noHooks, "no-hooks", false, "skip hooks.yaml")
	return cmd
}
