// Package watcher reports which files under a directory tree changed, using
// fsnotify with a polling fallback. Bursts of events are debounced and the
// changed paths are coalesced until drained.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the polling interval in fallback mode.
const DefaultPollInterval = 2 * time.Second

// Common errors.
var (
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrNotDirectory   = errors.New("watched path is not a directory")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithOnChange sets a callback receiving each flushed set of changed paths.
func WithOnChange(fn func(paths []string)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling even when fsnotify is available.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

type fileStamp struct {
	mtime time.Time
	size  int64
}

// Watcher monitors every regular file below root. Paths it reports are
// slash-separated and relative to root, e.g. "runtime/node_height.json".
type Watcher struct {
	root             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func([]string)
	onError          func(error)
	forcePoll        bool

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	stamps      map[string]fileStamp

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.RWMutex

	pendingMu sync.Mutex
	pending   map[string]struct{}
	changeCh  chan struct{}
}

// NewWatcher creates a watcher for the directory tree at root.
func NewWatcher(root string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:             abs,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func([]string) {},
		onError:          func(error) {},
		pending:          make(map[string]struct{}),
		changeCh:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounceDuration)
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	info, err := os.Stat(w.root)
	if err != nil {
		if os.IsPermission(err) {
			return ErrPermission
		}
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.stamps = w.scan()
	w.useFallback = w.forcePoll || envBool("HUBTREE_FORCE_POLL")

	if !w.useFallback {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			w.useFallback = true
		} else if err := w.addTree(fsw); err != nil {
			fsw.Close()
			w.useFallback = true
		} else {
			w.fsWatcher = fsw
			go w.watchFsnotify()
		}
	}
	if w.useFallback {
		go w.watchPolling()
	}

	w.started = true
	return nil
}

// addTree registers root and every directory below it; fsnotify is not
// recursive.
func (w *Watcher) addTree(fsw *fsnotify.Watcher) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}

// Stop stops watching. The change channel stays open so a pending receive
// does not spin.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	if w.cancel != nil {
		w.cancel()
	}
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling reports whether the watcher is polling.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed receives after each flush. Call Drain to collect the paths.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Drain returns and clears the changed paths collected so far, sorted.
func (w *Watcher) Drain() []string {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	out := make([]string, 0, len(w.pending))
	for p := range w.pending {
		out = append(out, p)
	}
	sort.Strings(out)
	w.pending = make(map[string]struct{})
	return out
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// PollInterval returns the polling interval.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// ignored reports whether rel is a temporary file written on the way to
// an atomic rename.
func ignored(rel string) bool {
	base := filepath.Base(rel)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp")
}

func (w *Watcher) rel(path string) (string, bool) {
	r, err := filepath.Rel(w.root, path)
	if err != nil || r == "." || strings.HasPrefix(r, "..") {
		return "", false
	}
	r = filepath.ToSlash(r)
	if ignored(r) {
		return "", false
	}
	return r, true
}

func (w *Watcher) record(rel string) {
	w.pendingMu.Lock()
	w.pending[rel] = struct{}{}
	w.pendingMu.Unlock()
	w.debouncer.Trigger(w.notifyChange)
}

func (w *Watcher) watchFsnotify() {
	w.mu.RLock()
	if w.fsWatcher == nil {
		w.mu.RUnlock()
		return
	}
	fsw := w.fsWatcher
	events := fsw.Events
	errs := fsw.Errors
	w.mu.RUnlock()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fsw.Add(event.Name); err != nil {
						w.onError(err)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if rel, ok := w.rel(event.Name); ok {
				w.record(rel)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// scan stats every regular file under root.
func (w *Watcher) scan() map[string]fileStamp {
	stamps := make(map[string]fileStamp)
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				w.onError(ErrPermission)
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, ok := w.rel(path)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		stamps[rel] = fileStamp{mtime: info.ModTime(), size: info.Size()}
		return nil
	})
	if err != nil {
		w.onError(err)
	}
	return stamps
}

func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			current := w.scan()

			w.mu.Lock()
			var changed []string
			for rel, st := range current {
				old, ok := w.stamps[rel]
				if !ok || st.mtime.After(old.mtime) || st.size != old.size {
					changed = append(changed, rel)
				}
			}
			for rel := range w.stamps {
				if _, ok := current[rel]; !ok {
					changed = append(changed, rel)
				}
			}
			w.stamps = current
			w.mu.Unlock()

			for _, rel := range changed {
				w.record(rel)
			}
		}
	}
}

// notifyChange flushes to the callback and signals the change channel.
func (w *Watcher) notifyChange() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if !started {
		return
	}

	w.pendingMu.Lock()
	snapshot := make([]string, 0, len(w.pending))
	for p := range w.pending {
		snapshot = append(snapshot, p)
	}
	w.pendingMu.Unlock()
	sort.Strings(snapshot)
	w.onChange(snapshot)

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
