package graph

import (
	json "github.com/goccy/go-json"
)

// DB is the read-only query surface a host uses to inspect the realized
// graph. A zero DB behaves like an empty graph.
type DB struct {
	entries Entries
}

// NewDB wraps entries. The map is not copied; callers must not mutate it.
func NewDB(entries Entries) *DB {
	return &DB{entries: entries}
}

// Get returns the entry for path, or nil.
func (db *DB) Get(path string) *Entry {
	if db == nil {
		return nil
	}
	return db.entries.Get(path)
}

// Has reports whether path is a known entry.
func (db *DB) Has(path string) bool { return db.Get(path) != nil }

// IsEmpty reports whether the graph has no entries.
func (db *DB) IsEmpty() bool { return db == nil || len(db.entries) == 0 }

// Root returns the root entry, or nil.
func (db *DB) Root() *Entry { return db.Get(RootPath) }

// Keys returns all base paths sorted.
func (db *DB) Keys() []string {
	if db == nil {
		return []string{}
	}
	return db.entries.Keys()
}

// Raw returns the whole graph as a JSON document.
func (db *DB) Raw() json.RawMessage {
	if db == nil || db.entries == nil {
		return json.RawMessage("{}")
	}
	raw, err := json.Marshal(db.entries)
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}

// Entries returns the underlying graph.
func (db *DB) Entries() Entries {
	if db == nil {
		return nil
	}
	return db.entries
}
