package drive

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vanderheijden86/hubtree/pkg/metrics"
)

// MemDrive keeps documents in memory. Every Put is reported to watchers
// before it returns.
type MemDrive struct {
	mu   sync.RWMutex
	docs map[string][]byte
	hub  *hub
}

// NewMemDrive returns a drive holding a copy of docs.
func NewMemDrive(docs map[string][]byte) *MemDrive {
	d := &MemDrive{docs: make(map[string][]byte, len(docs)), hub: newHub()}
	for p, raw := range docs {
		d.docs[p] = append([]byte(nil), raw...)
	}
	return d
}

// Get implements Drive.
func (d *MemDrive) Get(_ context.Context, path string) ([]byte, error) {
	defer metrics.Timer(metrics.DriveRead)()
	d.mu.RLock()
	defer d.mu.RUnlock()
	raw, ok := d.docs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return append([]byte(nil), raw...), nil
}

// Put implements Drive.
func (d *MemDrive) Put(_ context.Context, path string, raw []byte, origin Origin) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	d.mu.Lock()
	d.docs[path] = append([]byte(nil), raw...)
	d.mu.Unlock()
	metrics.DriveWrites.Inc()

	d.hub.publish(Group([]string{path}, origin))
	return nil
}

// List implements Drive.
func (d *MemDrive) List(context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.docs))
	for p := range d.docs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// Watch implements Drive.
func (d *MemDrive) Watch(ctx context.Context) (<-chan Batch, error) {
	paths, _ := d.List(ctx)
	return d.hub.subscribe(ctx, Group(paths, Origin{}))
}

// Close implements Drive.
func (d *MemDrive) Close() error {
	d.hub.close()
	return nil
}
