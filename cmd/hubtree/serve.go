package main

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/protocol"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var name, peer string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer db_* requests as JSON lines on stdin and stdout",
		Long: "serve reads one request envelope per line from stdin and writes each\n" +
			"db_response to stdout. A db_initialized notice goes out first and again\n" +
			"whenever the drive's entries change.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDrive(cmd.Context(), *flags, func(cfg config.Config, d drive.Drive) error {
				s := protocol.NewServer(name, peer, cmd.OutOrStdout())
				return serve(cmd.Context(), s, d, cmd.InOrStdin())
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "hubtree", "sender name in response heads")
	cmd.Flags().StringVar(&peer, "peer", "host", "receiver name for notices")
	return cmd
}

// serve announces the entries, then answers requests from in until EOF
// while re-announcing every entries change.
func serve(ctx context.Context, s *protocol.Server, d drive.Drive, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries, err := readEntries(ctx, d)
	if err != nil {
		log.Printf("warning: %v", err)
	}
	if err := s.Send(s.Load(entries)); err != nil {
		return err
	}

	batches, err := d.Watch(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.Serve(gctx, in)
	})
	g.Go(func() error {
		first := true
		for {
			select {
			case <-gctx.Done():
				return nil
			case b, ok := <-batches:
				if !ok {
					return nil
				}
				// The first batch lists what was just loaded.
				if first {
					first = false
					continue
				}
				if !hasKind(b, drive.KindEntries) {
					continue
				}
				entries, err := readEntries(gctx, d)
				if err != nil {
					log.Printf("warning: %v", err)
					continue
				}
				if err := s.Send(s.Load(entries)); err != nil {
					return err
				}
			}
		}
	})
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func hasKind(b drive.Batch, k drive.Kind) bool {
	for _, ev := range b.Events {
		if ev.Type == k {
			return true
		}
	}
	return false
}
