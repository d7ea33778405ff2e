package drive

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vanderheijden86/hubtree/pkg/debug"
	"github.com/vanderheijden86/hubtree/pkg/metrics"
	"github.com/vanderheijden86/hubtree/pkg/watcher"
)

// DirOptions tunes a DirDrive.
type DirOptions struct {
	Debounce     time.Duration
	PollInterval time.Duration
	ForcePoll    bool
}

type localWrite struct {
	sum    [sha256.Size]byte
	origin Origin
}

// DirDrive stores one file per document below a root directory and
// watches the tree for changes, including edits made by other programs.
type DirDrive struct {
	root string
	w    *watcher.Watcher
	hub  *hub

	mu     sync.Mutex
	writes map[string]localWrite
}

// OpenDir opens (creating if needed) the drive rooted at root and starts
// watching it.
func OpenDir(root string, opts DirOptions) (*DirDrive, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating drive directory: %w", err)
	}
	d := &DirDrive{
		root:   root,
		hub:    newHub(),
		writes: make(map[string]localWrite),
	}

	wopts := []watcher.WatcherOption{
		watcher.WithOnChange(d.onChange),
		watcher.WithOnError(func(err error) {
			log.Printf("warning: watching %s: %v", root, err)
		}),
		watcher.WithForcePoll(opts.ForcePoll),
	}
	if opts.Debounce > 0 {
		wopts = append(wopts, watcher.WithDebounceDuration(opts.Debounce))
	}
	if opts.PollInterval > 0 {
		wopts = append(wopts, watcher.WithPollInterval(opts.PollInterval))
	}
	w, err := watcher.NewWatcher(root, wopts...)
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	d.w = w
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	debug.Log("dir drive at %s (polling=%v)", root, w.IsPolling())
	return d, nil
}

// Root returns the drive directory.
func (d *DirDrive) Root() string { return d.root }

// Polling reports whether changes are detected by polling.
func (d *DirDrive) Polling() bool { return d.w.IsPolling() }

func (d *DirDrive) file(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(path))
}

// Get implements Drive.
func (d *DirDrive) Get(_ context.Context, path string) ([]byte, error) {
	defer metrics.Timer(metrics.DriveRead)()
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(d.file(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}

// Put writes raw atomically through a temporary file. The watcher picks
// the change up; content matching this write is attributed to origin.
func (d *DirDrive) Put(_ context.Context, path string, raw []byte, origin Origin) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	target := d.file(path)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		metrics.DriveWriteErrors.Inc()
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	d.mu.Lock()
	d.writes[path] = localWrite{sum: sha256.Sum256(raw), origin: origin}
	d.mu.Unlock()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+"-*.tmp")
	if err != nil {
		metrics.DriveWriteErrors.Inc()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		metrics.DriveWriteErrors.Inc()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		metrics.DriveWriteErrors.Inc()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		metrics.DriveWriteErrors.Inc()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	metrics.DriveWrites.Inc()
	return nil
}

// List implements Drive.
func (d *DirDrive) List(context.Context) ([]string, error) {
	var out []string
	err := filepath.WalkDir(d.root, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			if p != d.root && strings.HasPrefix(e.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ValidatePath(rel) == nil && !strings.HasSuffix(rel, ".tmp") {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing drive: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

// Watch implements Drive.
func (d *DirDrive) Watch(ctx context.Context) (<-chan Batch, error) {
	paths, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	return d.hub.subscribe(ctx, Group(paths, Origin{}))
}

// onChange attributes each changed path to the local write whose content
// it still holds, then publishes one batch per origin. The flushed paths
// are ignored in favor of draining, which also clears them.
func (d *DirDrive) onChange([]string) {
	paths := d.w.Drain()
	if len(paths) == 0 {
		return
	}

	byOrigin := make(map[Origin][]string)
	var order []Origin
	d.mu.Lock()
	for _, p := range paths {
		if ValidatePath(p) != nil {
			continue
		}
		var origin Origin
		if lw, ok := d.writes[p]; ok {
			raw, err := os.ReadFile(d.file(p))
			if err == nil && sha256.Sum256(raw) == lw.sum {
				origin = lw.origin
			}
		}
		if _, ok := byOrigin[origin]; !ok {
			order = append(order, origin)
		}
		byOrigin[origin] = append(byOrigin[origin], p)
	}
	d.mu.Unlock()

	for _, o := range order {
		d.hub.publish(Group(byOrigin[o], o))
	}
}

// Close stops watching and ends every subscription.
func (d *DirDrive) Close() error {
	d.w.Stop()
	d.hub.close()
	return nil
}
