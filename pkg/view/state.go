// Package view flattens the entry graph into the ordered rows the explorer
// renders. Everything here is pure: entries and instance states go in, rows
// come out, and nothing touches the terminal.
package view

import (
	"strings"

	"github.com/vanderheijden86/hubtree/pkg/graph"
)

// RootInstancePath is the instance path of the graph root.
const RootInstancePath = "|" + graph.RootPath

// InstancePath joins a parent instance path and a base path.
func InstancePath(parent, basePath string) string {
	return parent + "|" + basePath
}

// SplitInstancePath returns the base paths along an instance path, root first.
func SplitInstancePath(instancePath string) []string {
	var parts []string
	for _, p := range strings.Split(instancePath, "|") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// BaseOf returns the base path an instance path ends in.
func BaseOf(instancePath string) string {
	i := strings.LastIndex(instancePath, "|")
	if i < 0 {
		return instancePath
	}
	return instancePath[i+1:]
}

// IsWithin reports whether instancePath is ancestor itself or one of its
// descendants.
func IsWithin(instancePath, ancestor string) bool {
	return instancePath == ancestor || strings.HasPrefix(instancePath, ancestor+"|")
}

// InstanceState is the expansion state of one instance.
type InstanceState struct {
	ExpandedSubs bool `json:"expanded_subs"`
	ExpandedHubs bool `json:"expanded_hubs"`
}

// StateMap holds instance states keyed by instance path. Entries are created
// lazily while building and are never removed; stale ones are unused.
type StateMap map[string]*InstanceState

// RootState is the state the root gets when entries load or on reset.
func RootState() InstanceState {
	return InstanceState{ExpandedSubs: true}
}

// EnsureRoot gives the root its initial expanded state unless it already
// has one. Call it when entries are loaded.
func (m StateMap) EnsureRoot() {
	if _, ok := m[RootInstancePath]; !ok {
		s := RootState()
		m[RootInstancePath] = &s
	}
}

// GetOrCreate returns the state for path, creating a collapsed one on first
// use.
func (m StateMap) GetOrCreate(path string) *InstanceState {
	if s, ok := m[path]; ok && s != nil {
		return s
	}
	s := &InstanceState{}
	m[path] = s
	return s
}

// Lookup returns the state for path without creating it.
func (m StateMap) Lookup(path string) (InstanceState, bool) {
	s, ok := m[path]
	if !ok || s == nil {
		return InstanceState{}, false
	}
	return *s, true
}

// Peek returns the state for path, collapsed when missing, without
// creating it.
func (m StateMap) Peek(path string) InstanceState {
	s, _ := m.Lookup(path)
	return s
}

// ToggleSubs flips expanded_subs for path and returns the new value.
func (m StateMap) ToggleSubs(path string) bool {
	s := m.GetOrCreate(path)
	s.ExpandedSubs = !s.ExpandedSubs
	return s.ExpandedSubs
}

// ToggleHubs flips expanded_hubs for path and returns the new value.
func (m StateMap) ToggleHubs(path string) bool {
	s := m.GetOrCreate(path)
	s.ExpandedHubs = !s.ExpandedHubs
	return s.ExpandedHubs
}

// Clone returns a deep copy.
func (m StateMap) Clone() StateMap {
	out := make(StateMap, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		s := *v
		out[k] = &s
	}
	return out
}

// ResetStates returns the state map a reset restores: only the root, with
// its subs expanded.
func ResetStates() StateMap {
	m := StateMap{}
	m.EnsureRoot()
	return m
}
