package graph

import (
	"testing"
)

const sampleEntries = `{
  "/": {"name": "root", "type": "root", "subs": ["/a", "/b"]},
  "/a": {"name": "a", "type": "folder", "subs": ["/a/x.js"], "hubs": ["/h"]},
  "/a/x.js": {"name": "x.js", "type": "js-file"},
  "/b": {"name": "b", "type": "folder", "hubs": ["/h", "/missing"]},
  "/h": {"name": "h", "type": "folder"},
  "/gone": null
}`

func TestParse(t *testing.T) {
	entries, err := Parse([]byte(sampleEntries))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("expected null entry to be dropped, got %d entries", len(entries))
	}
	if !entries.HasRoot() {
		t.Fatal("expected root")
	}
	if got := entries.FirstHub("/b"); got != "/h" {
		t.Errorf("FirstHub(/b) = %q, want /h", got)
	}
	if !entries.IsSub("/a", "/a/x.js") || entries.IsSub("/a", "/h") {
		t.Error("IsSub mismatch")
	}
	if !entries.IsHub("/a", "/h") || entries.IsHub("/nope", "/h") {
		t.Error("IsHub mismatch")
	}
	if !entries.Get("/a/x.js").IsFile() {
		t.Error("expected js-file to be a file")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"malformed", "{"},
		{"array", "[1,2]"},
		{"null", "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); err == nil {
				t.Errorf("expected error for %q", tt.raw)
			}
		})
	}
}

func TestDisplayNameFallback(t *testing.T) {
	var nilEntry *Entry
	if got := nilEntry.DisplayName("/p"); got != "/p" {
		t.Errorf("nil entry DisplayName = %q", got)
	}
	if got := (&Entry{}).DisplayName("/p"); got != "/p" {
		t.Errorf("unnamed DisplayName = %q", got)
	}
	if got := (&Entry{Name: "n"}).DisplayName("/p"); got != "n" {
		t.Errorf("DisplayName = %q", got)
	}
}

func TestDB(t *testing.T) {
	var empty *DB
	if !empty.IsEmpty() || empty.Has("/") || empty.Root() != nil {
		t.Error("nil DB should behave as empty")
	}
	if string(empty.Raw()) != "{}" {
		t.Errorf("nil DB Raw = %s", empty.Raw())
	}

	entries, err := Parse([]byte(sampleEntries))
	if err != nil {
		t.Fatal(err)
	}
	db := NewDB(entries)
	if db.IsEmpty() {
		t.Error("expected non-empty DB")
	}
	if db.Root() == nil || db.Root().Name != "root" {
		t.Error("expected root entry")
	}
	keys := db.Keys()
	if len(keys) != 5 || keys[0] != "/" {
		t.Errorf("unexpected keys %v", keys)
	}
	round, err := Parse(db.Raw())
	if err != nil {
		t.Fatalf("Raw did not parse back: %v", err)
	}
	if len(round) != len(entries) {
		t.Errorf("Raw lost entries: %d vs %d", len(round), len(entries))
	}
}

func TestCheck(t *testing.T) {
	entries, err := Parse([]byte(sampleEntries))
	if err != nil {
		t.Fatal(err)
	}
	report := Check(entries)
	if report.MissingRoot {
		t.Error("root present")
	}
	if len(report.Dangling) != 1 || report.Dangling[0].To != "/missing" || report.Dangling[0].Relation != "hub" {
		t.Errorf("unexpected dangling: %+v", report.Dangling)
	}
	if len(report.SubCycles) != 0 {
		t.Errorf("unexpected cycles: %v", report.SubCycles)
	}
	if report.OK() {
		t.Error("report with dangling refs should not be OK")
	}
}

func TestCheckSubCycles(t *testing.T) {
	entries := Entries{
		"/":  {Name: "root", Type: TypeRoot, Subs: []string{"/a"}},
		"/a": {Name: "a", Type: TypeFolder, Subs: []string{"/b"}, Hubs: []string{"/"}},
		"/b": {Name: "b", Type: TypeFolder, Subs: []string{"/a"}},
		"/s": {Name: "s", Type: TypeFolder, Subs: []string{"/s"}},
	}
	report := Check(entries)
	if len(report.SubCycles) != 2 {
		t.Fatalf("expected 2 cycles, got %v", report.SubCycles)
	}
	if report.SubCycles[0][0] != "/a" || report.SubCycles[0][1] != "/b" {
		t.Errorf("unexpected first cycle %v", report.SubCycles[0])
	}
	if report.SubCycles[1][0] != "/s" {
		t.Errorf("unexpected self cycle %v", report.SubCycles[1])
	}
}

func TestCheckMissingRoot(t *testing.T) {
	report := Check(Entries{"/a": {Name: "a"}})
	if !report.MissingRoot || report.OK() {
		t.Errorf("expected missing root, got %+v", report)
	}
	if (Report{Entries: 3}).String() != "3 entries, no problems" {
		t.Error("unexpected OK string")
	}
}
