package drive

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

type subscriber struct {
	ch   chan Batch
	done <-chan struct{}
}

// hub fans batches out to watchers.
type hub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
	done   chan struct{}
}

func newHub() *hub {
	return &hub{
		subs: make(map[*subscriber]struct{}),
		done: make(chan struct{}),
	}
}

// subscribe registers a watcher and queues initial as its first batch.
func (h *hub) subscribe(ctx context.Context, initial Batch) (<-chan Batch, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	s := &subscriber{ch: make(chan Batch, subscriberBuffer), done: ctx.Done()}
	s.ch <- initial
	h.subs[s] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-h.done:
			return
		}
		h.mu.Lock()
		if _, ok := h.subs[s]; ok {
			delete(h.subs, s)
			close(s.ch)
		}
		h.mu.Unlock()
	}()
	return s.ch, nil
}

// publish delivers b to every watcher. A watcher whose context ended is
// skipped rather than waited for.
func (h *hub) publish(b Batch) {
	if len(b.Events) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.ch <- b:
		case <-s.done:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
}
