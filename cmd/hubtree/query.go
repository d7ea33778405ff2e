package main

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/protocol"
)

func newQueryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query <get|has|is_empty|root|keys|raw> [path]",
		Short: "Answer one db_* query against the drive's entries",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := "db_" + strings.TrimPrefix(args[0], "db_")
			var params any
			if len(args) == 2 {
				params = protocol.PathParams{Path: args[1]}
			}
			return withDrive(cmd.Context(), *flags, func(cfg config.Config, d drive.Drive) error {
				entries, err := readEntries(cmd.Context(), d)
				if err != nil {
					return err
				}
				s := protocol.NewServer("hubtree", "cli", nil)
				s.Load(entries)

				req, err := protocol.Request(protocol.Head{By: "cli", To: "hubtree"}, op, params)
				if err != nil {
					return err
				}
				resp, err := s.Handle(req)
				if err != nil {
					return err
				}
				var result any
				if err := resp.Result(&result); err != nil {
					return err
				}
				raw, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return err
			})
		},
	}
}
