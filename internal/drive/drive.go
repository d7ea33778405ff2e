// Package drive stores the explorer's documents and reports changes to them.
//
// A document is addressed by a slash-separated path whose first segment is
// its kind, e.g. "runtime/instance_states.json". Drives deliver changes as
// batches of events, one event per kind, each listing the changed paths.
// The explorer reads the paths itself; batches carry no content.
package drive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind names a dataset.
type Kind string

// Known kinds.
const (
	KindEntries Kind = "entries"
	KindStyle   Kind = "style"
	KindRuntime Kind = "runtime"
	KindMode    Kind = "mode"
	KindFlags   Kind = "flags"
)

// kindRank orders events inside a batch so entries load before the state
// that refers to them.
var kindRank = map[Kind]int{
	KindEntries: 0,
	KindStyle:   1,
	KindFlags:   2,
	KindRuntime: 3,
	KindMode:    4,
}

// Errors returned by drives.
var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document path")
	ErrClosed      = errors.New("drive closed")
)

// KindOf returns the kind of a document path.
func KindOf(path string) Kind {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return Kind(path[:i])
	}
	return Kind(path)
}

// Origin identifies the write that produced a change. The zero Origin
// marks changes from outside any explorer, such as an edited file.
type Origin struct {
	Writer  string `json:"writer,omitempty"`
	Version uint64 `json:"version,omitempty"`
}

// IsZero reports whether o is unattributed.
func (o Origin) IsZero() bool { return o.Writer == "" && o.Version == 0 }

// Event lists changed paths of one kind.
type Event struct {
	Type  Kind
	Paths []string
}

// Batch is one delivery of changes.
type Batch struct {
	Events []Event
	Origin Origin
}

// Paths returns every path in the batch.
func (b Batch) Paths() []string {
	var out []string
	for _, ev := range b.Events {
		out = append(out, ev.Paths...)
	}
	return out
}

// Group builds a batch from paths, one event per kind. Known kinds come
// first in load order, unknown ones after in name order. Paths are sorted
// and deduplicated within each event.
func Group(paths []string, origin Origin) Batch {
	byKind := make(map[Kind][]string)
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		k := KindOf(p)
		byKind[k] = append(byKind[k], p)
	}

	kinds := make([]Kind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		ri, iok := kindRank[kinds[i]]
		rj, jok := kindRank[kinds[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return kinds[i] < kinds[j]
	})

	b := Batch{Origin: origin}
	for _, k := range kinds {
		ps := byKind[k]
		sort.Strings(ps)
		b.Events = append(b.Events, Event{Type: k, Paths: ps})
	}
	return b
}

// ValidatePath checks that path names a document: "kind/name" with no
// empty, dot or dot-dot segments.
func ValidatePath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return fmt.Errorf("%w: %q has no kind", ErrInvalidPath, path)
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.HasPrefix(p, ".") {
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return nil
}

// Drive is a document store with change notification.
type Drive interface {
	// Get returns the raw document at path, or an error wrapping
	// ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)
	// Put stores raw at path. The change is reported to watchers stamped
	// with origin.
	Put(ctx context.Context, path string, raw []byte, origin Origin) error
	// List returns every stored path, sorted.
	List(ctx context.Context) ([]string, error)
	// Watch subscribes to changes. The first batch lists every existing
	// document. The channel closes when ctx ends or the drive closes.
	Watch(ctx context.Context) (<-chan Batch, error)
	Close() error
}
