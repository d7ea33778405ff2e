package testutil

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/graph"
	"github.com/vanderheijden86/hubtree/pkg/view"
)

// DriveDocs returns the default drive documents with entries replaced.
func DriveDocs(t testing.TB, entries graph.Entries) map[string][]byte {
	t.Helper()
	raw, err := entries.Marshal()
	if err != nil {
		t.Fatalf("marshal entries: %v", err)
	}
	docs := drive.Defaults()
	docs["entries/entries.json"] = raw
	return docs
}

// WriteDocs writes docs into dir in the directory drive layout.
func WriteDocs(t testing.TB, dir string, docs map[string][]byte) {
	t.Helper()
	for p, raw := range docs {
		file := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", p, err)
		}
		if err := os.WriteFile(file, raw, 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

// AssertInstancePaths fails unless rows are exactly want, in order.
func AssertInstancePaths(t testing.TB, rows []view.Row, want ...string) {
	t.Helper()
	got := view.InstancePaths(rows)
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v\nwant   %v", got, want)
	}
}
