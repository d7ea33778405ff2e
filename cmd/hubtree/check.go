package main

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/graph"
)

var errCheckFailed = errors.New("graph check found problems")

func newCheckCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report dangling references, a missing root and sub cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDrive(cmd.Context(), *flags, func(cfg config.Config, d drive.Drive) error {
				entries, err := readEntries(cmd.Context(), d)
				if err != nil {
					return err
				}
				report := graph.Check(entries)
				out := cmd.OutOrStdout()
				if asJSON {
					raw, err := json.MarshalIndent(report, "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(raw))
				} else {
					fmt.Fprintln(out, report)
					for _, dg := range report.Dangling {
						fmt.Fprintf(out, "  %s %s -> %s (no entry)\n", dg.Relation, dg.From, dg.To)
					}
					for _, c := range report.SubCycles {
						fmt.Fprintf(out, "  sub cycle: %v\n", c)
					}
				}
				if !report.OK() {
					return errCheckFailed
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func readEntries(ctx context.Context, d drive.Drive) (graph.Entries, error) {
	raw, err := d.Get(ctx, docEntries)
	if err != nil {
		return nil, err
	}
	return graph.Parse(raw)
}
