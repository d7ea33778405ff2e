package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/debug"
)

// frame is how long scroll persistence waits before writing.
const frame = 16 * time.Millisecond

// readConcurrency bounds parallel document reads per batch.
const readConcurrency = 8

// BatchMsg is a drive batch with its documents read. Docs holds the raw
// content of every path that could be read; absent paths are missing.
type BatchMsg struct {
	Batch drive.Batch
	Docs  map[string][]byte
}

// watchStartedMsg hands the subscription to the update loop.
type watchStartedMsg struct {
	ch <-chan drive.Batch
}

// watchClosedMsg reports the end of the subscription.
type watchClosedMsg struct {
	err error
}

// writeDoneMsg reports a flushed write run.
type writeDoneMsg struct {
	err error
}

// fillStepMsg asks for one more chunk of the window fill started in gen.
type fillStepMsg struct {
	gen uint64
}

// scrollPersistMsg flushes the pending scroll position.
type scrollPersistMsg struct{}

// flashDoneMsg ends the jump highlight numbered seq.
type flashDoneMsg struct {
	seq int
}

// copiedMsg reports a clipboard copy.
type copiedMsg struct {
	text string
	err  error
}

// docWrite is one document put, marshalled when the action happened.
type docWrite struct {
	path   string
	raw    []byte
	origin drive.Origin
}

// subscribeCmd starts watching d.
func subscribeCmd(ctx context.Context, d drive.Drive) tea.Cmd {
	return func() tea.Msg {
		ch, err := d.Watch(ctx)
		if err != nil {
			return watchClosedMsg{err: fmt.Errorf("watching drive: %w", err)}
		}
		return watchStartedMsg{ch: ch}
	}
}

// listenCmd waits for the next batch and reads its documents.
func listenCmd(ctx context.Context, d drive.Drive, ch <-chan drive.Batch) tea.Cmd {
	return func() tea.Msg {
		select {
		case b, ok := <-ch:
			if !ok {
				return watchClosedMsg{}
			}
			return ReadBatch(ctx, d, b)
		case <-ctx.Done():
			return watchClosedMsg{}
		}
	}
}

// ReadBatch reads every path of b in parallel. Documents that cannot be
// read are left out of Docs; failures other than a missing document are
// logged.
func ReadBatch(ctx context.Context, d drive.Drive, b drive.Batch) BatchMsg {
	paths := b.Paths()
	raws := make([][]byte, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, p := range paths {
		g.Go(func() error {
			raw, err := d.Get(gctx, p)
			if err != nil {
				if !errors.Is(err, drive.ErrNotFound) {
					log.Printf("warning: reading %s: %v", p, err)
				}
				return nil
			}
			raws[i] = raw
			return nil
		})
	}
	_ = g.Wait()

	docs := make(map[string][]byte, len(paths))
	for i, p := range paths {
		if raws[i] != nil {
			docs[p] = raws[i]
		}
	}
	return BatchMsg{Batch: b, Docs: docs}
}

// flushCmd writes docs in order, stopping at the first failure.
func flushCmd(ctx context.Context, d drive.Drive, docs []docWrite) tea.Cmd {
	return func() tea.Msg {
		for _, w := range docs {
			if err := d.Put(ctx, w.path, w.raw, w.origin); err != nil {
				return writeDoneMsg{err: fmt.Errorf("writing %s: %w", w.path, err)}
			}
		}
		debug.Log("flushed %d documents", len(docs))
		return writeDoneMsg{}
	}
}

func fillCmd(gen uint64) tea.Cmd {
	return func() tea.Msg { return fillStepMsg{gen: gen} }
}

func scrollPersistCmd() tea.Cmd {
	return tea.Tick(frame, func(time.Time) tea.Msg { return scrollPersistMsg{} })
}

func flashCmd(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{text: text, err: clipboard.WriteAll(text)}
	}
}

// decode parses a JSON document into v, logging failures.
func decode(path string, raw []byte, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("warning: parsing %s: %v", path, err)
		return false
	}
	return true
}
