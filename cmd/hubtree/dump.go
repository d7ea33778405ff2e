package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/export"
	"github.com/vanderheijden86/hubtree/pkg/metrics"
)

func newDumpCmd(flags *rootFlags) *cobra.Command {
	var (
		width int
		stats bool
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the current tree as text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("width") {
				width = terminalWidth()
			}
			return withDrive(cmd.Context(), *flags, func(cfg config.Config, d drive.Drive) error {
				s, err := loadSnapshot(cmd.Context(), d, cfg)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if err := export.WriteText(out, export.Options{
					Rows:    s.Rows,
					Entries: s.Entries,
					States:  s.States,
					Tracker: s.Tracker,
					Width:   width,
				}); err != nil {
					return err
				}
				if !stats {
					return nil
				}
				raw, err := json.MarshalIndent(map[string]any{
					"timings":  metrics.AllTimingStats(),
					"counters": metrics.CounterValues(),
				}, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.ErrOrStderr(), string(raw))
				return err
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "truncate lines to this many cells (default: terminal width, 0 when piped)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print timing metrics as JSON on stderr")
	return cmd
}

// terminalWidth is the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
