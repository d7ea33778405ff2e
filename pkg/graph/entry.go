// Package graph holds the static entry graph the explorer renders: entries
// keyed by base path, each with ordered subs (hierarchical children) and hubs
// (cross-references rendered above the node).
package graph

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// RootPath is the base path of the graph root. Nothing renders without it.
const RootPath = "/"

// Entry type values. Files carry a suffixed type such as "js-file".
const (
	TypeRoot   = "root"
	TypeFolder = "folder"
)

// Entry is one node of the graph.
type Entry struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Subs []string `json:"subs,omitempty"`
	Hubs []string `json:"hubs,omitempty"`
}

// DisplayName returns the entry name, falling back to the base path.
func (e *Entry) DisplayName(basePath string) string {
	if e == nil || e.Name == "" {
		return basePath
	}
	return e.Name
}

// HasSubs reports whether the entry has hierarchical children.
func (e *Entry) HasSubs() bool { return e != nil && len(e.Subs) > 0 }

// HasHubs reports whether the entry has cross-references.
func (e *Entry) HasHubs() bool { return e != nil && len(e.Hubs) > 0 }

// IsFile reports whether the entry type is one of the *-file kinds.
func (e *Entry) IsFile() bool { return e != nil && strings.HasSuffix(e.Type, "-file") }

// Entries is the whole graph keyed by base path.
type Entries map[string]*Entry

// Parse decodes an entries document. Null entries are dropped so lookups
// never see a nil *Entry.
func Parse(raw []byte) (Entries, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("parsing entries: empty document")
	}
	var entries Entries
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing entries: %w", err)
	}
	if entries == nil {
		return nil, fmt.Errorf("parsing entries: document is not an object")
	}
	for k, v := range entries {
		if v == nil {
			delete(entries, k)
		}
	}
	return entries, nil
}

// Marshal encodes the graph with sorted keys.
func (es Entries) Marshal() ([]byte, error) {
	return json.MarshalIndent(es, "", "  ")
}

// Get returns the entry for basePath or nil.
func (es Entries) Get(basePath string) *Entry {
	if es == nil {
		return nil
	}
	return es[basePath]
}

// HasRoot reports whether the root entry exists.
func (es Entries) HasRoot() bool { return es.Get(RootPath) != nil }

// Keys returns every base path in sorted order.
func (es Entries) Keys() []string {
	keys := make([]string, 0, len(es))
	for k := range es {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSub reports whether child is listed in parent's subs.
func (es Entries) IsSub(parent, child string) bool {
	e := es.Get(parent)
	if e == nil {
		return false
	}
	for _, s := range e.Subs {
		if s == child {
			return true
		}
	}
	return false
}

// IsHub reports whether child is listed in parent's hubs.
func (es Entries) IsHub(parent, child string) bool {
	e := es.Get(parent)
	if e == nil {
		return false
	}
	for _, h := range e.Hubs {
		if h == child {
			return true
		}
	}
	return false
}

// FirstHub returns the first hub of basePath, or "".
func (es Entries) FirstHub(basePath string) string {
	e := es.Get(basePath)
	if e == nil || len(e.Hubs) == 0 {
		return ""
	}
	return e.Hubs[0]
}
