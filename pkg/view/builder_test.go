package view

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/hubtree/pkg/graph"
)

func scenarioEntries() graph.Entries {
	return graph.Entries{
		"/":  {Name: "root", Type: graph.TypeRoot, Subs: []string{"/a"}},
		"/a": {Name: "a", Type: graph.TypeFolder, Subs: []string{}, Hubs: []string{}},
	}
}

func TestBuild_RootOnly(t *testing.T) {
	states := StateMap{}
	rows := Build(scenarioEntries(), states, BuildOptions{})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].BasePath != "/" || rows[0].InstancePath != RootInstancePath || rows[0].Depth != 0 {
		t.Errorf("unexpected root row %+v", rows[0])
	}
	if _, ok := states[RootInstancePath]; !ok {
		t.Error("building should create the root state lazily")
	}
}

func TestBuild_ToggleRootSubs(t *testing.T) {
	entries := scenarioEntries()
	states := StateMap{}
	Build(entries, states, BuildOptions{})

	states.ToggleSubs(RootInstancePath)
	rows := Build(entries, states, BuildOptions{})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].BasePath != "/a" || rows[1].InstancePath != "|/|/a" || rows[1].Depth != 1 {
		t.Errorf("unexpected second row %+v", rows[1])
	}

	states.ToggleSubs(RootInstancePath)
	if rows := Build(entries, states, BuildOptions{}); len(rows) != 1 {
		t.Errorf("collapsing again should restore 1 row, got %d", len(rows))
	}
}

func TestBuild_EnsureRootExpands(t *testing.T) {
	states := StateMap{}
	states.EnsureRoot()
	if rows := Build(scenarioEntries(), states, BuildOptions{}); len(rows) != 2 {
		t.Fatalf("seeded root should show its subs, got %d rows", len(rows))
	}

	// an existing root state is left alone
	states = StateMap{RootInstancePath: {}}
	states.EnsureRoot()
	if states.Peek(RootInstancePath).ExpandedSubs {
		t.Error("EnsureRoot overwrote an existing state")
	}
}

func TestBuild_MissingRoot(t *testing.T) {
	rows := Build(graph.Entries{"/a": {Name: "a"}}, StateMap{}, BuildOptions{})
	if len(rows) != 0 {
		t.Errorf("expected no rows without a root, got %d", len(rows))
	}
}

func TestBuild_MissingEntrySkipped(t *testing.T) {
	entries := graph.Entries{
		"/":  {Name: "root", Type: graph.TypeRoot, Subs: []string{"/gone", "/a"}},
		"/a": {Name: "a", Type: graph.TypeFolder},
	}
	rows := Build(entries, ResetStates(), BuildOptions{})
	if got := InstancePaths(rows); !reflect.DeepEqual(got, []string{"|/", "|/|/a"}) {
		t.Errorf("unexpected rows %v", got)
	}
	if !rows[1].IsLastSub {
		t.Error("/a is the last listed sub")
	}
}

func hubEntries() graph.Entries {
	return graph.Entries{
		"/":   {Name: "root", Type: graph.TypeRoot, Subs: []string{"/a", "/b"}},
		"/a":  {Name: "a", Type: graph.TypeFolder, Subs: []string{"/a1"}, Hubs: []string{"/h"}},
		"/a1": {Name: "a1", Type: "js-file"},
		"/b":  {Name: "b", Type: graph.TypeFolder, Hubs: []string{"/h"}},
		"/h":  {Name: "h", Type: graph.TypeFolder, Hubs: []string{"/a1"}},
	}
}

func TestBuild_HubsAboveSubsBelow(t *testing.T) {
	entries := hubEntries()
	states := ResetStates()
	states["|/|/a"] = &InstanceState{ExpandedSubs: true, ExpandedHubs: true}
	rows := Build(entries, states, BuildOptions{})
	want := []string{"|/", "|/|/a|/h", "|/|/a", "|/|/a|/a1", "|/|/b"}
	if got := InstancePaths(rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}

	h := rows[1]
	if !h.IsHub || !h.IsHubOnTop || !h.IsLastSub || h.IsFirstHub {
		t.Errorf("unexpected hub flags %+v", h)
	}
	if !reflect.DeepEqual(h.PipeTrail, []bool{true}) {
		t.Errorf("hub pipe trail = %v", h.PipeTrail)
	}
	a1 := rows[3]
	if !reflect.DeepEqual(a1.PipeTrail, []bool{true}) || !a1.IsLastSub {
		t.Errorf("a1 row %+v", a1)
	}
	if b := rows[4]; len(b.PipeTrail) != 0 || !b.IsLastSub {
		t.Errorf("b row %+v", b)
	}
}

func TestBuild_NestedHubChainFirstHub(t *testing.T) {
	entries := hubEntries()
	states := ResetStates()
	states["|/|/a"] = &InstanceState{ExpandedHubs: true}
	states["|/|/a|/h"] = &InstanceState{ExpandedHubs: true}
	rows := Build(entries, states, BuildOptions{})
	want := []string{"|/", "|/|/a|/h|/a1", "|/|/a|/h", "|/|/a", "|/|/b"}
	if got := InstancePaths(rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	// a hub of an on-top hub is the first hub of the chain
	if !rows[1].IsFirstHub {
		t.Errorf("expected nested hub to be first hub: %+v", rows[1])
	}
	// its own trail closes the chain column
	if got := rows[1].PipeTrail; !reflect.DeepEqual(got, []bool{true, false}) {
		t.Errorf("nested hub trail = %v", got)
	}
}

func TestBuild_DuplicateHubInstances(t *testing.T) {
	entries := hubEntries()
	states := ResetStates()
	states["|/|/a"] = &InstanceState{ExpandedHubs: true}
	states["|/|/b"] = &InstanceState{ExpandedHubs: true}
	rows := Build(entries, states, BuildOptions{})

	tr := NewTracker()
	tr.Rebuild(rows)
	if !tr.HasDuplicates("/h") {
		t.Fatal("expected /h to be duplicated")
	}
	if got := tr.Instances("/h"); !reflect.DeepEqual(got, []string{"|/|/a|/h", "|/|/b|/h"}) {
		t.Errorf("instances = %v", got)
	}

	suppressed := Build(entries, states, BuildOptions{SuppressDuplicateHubs: true})
	count := 0
	for _, r := range suppressed {
		if r.BasePath == "/h" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected one /h with suppression, got %d", count)
	}
}

func TestBuild_DoesNotAliasTrails(t *testing.T) {
	entries := graph.Entries{
		"/":  {Name: "root", Type: graph.TypeRoot, Subs: []string{"/a", "/b"}},
		"/a": {Name: "a", Subs: []string{"/x", "/y"}},
		"/b": {Name: "b", Subs: []string{"/x"}},
		"/x": {Name: "x"},
		"/y": {Name: "y"},
	}
	states := ResetStates()
	states["|/|/a"] = &InstanceState{ExpandedSubs: true}
	states["|/|/b"] = &InstanceState{ExpandedSubs: true}
	rows := Build(entries, states, BuildOptions{})
	byPath := map[string]Row{}
	for _, r := range rows {
		byPath[r.InstancePath] = r
	}
	if got := byPath["|/|/a|/x"].PipeTrail; !reflect.DeepEqual(got, []bool{true}) {
		t.Errorf("x under a trail = %v", got)
	}
	if got := byPath["|/|/b|/x"].PipeTrail; !reflect.DeepEqual(got, []bool{false}) {
		t.Errorf("x under b trail = %v", got)
	}
}

func TestPromote(t *testing.T) {
	entries := hubEntries()
	states := StateMap{}
	target := "|/|/a|/h|/a1"
	Promote(entries, states, target)

	if s := states.Peek("|/|/a"); !s.ExpandedHubs || s.ExpandedSubs {
		t.Errorf("/a state = %+v", s)
	}
	if s := states.Peek("|/|/a|/h"); !s.ExpandedHubs {
		t.Errorf("/h state = %+v", s)
	}
	rows := Build(entries, states, BuildOptions{})
	if IndexOf(rows, target) < 0 {
		t.Errorf("promoted path missing from %v", InstancePaths(rows))
	}
}

func TestPromote_RootAndEmpty(t *testing.T) {
	states := StateMap{RootInstancePath: {ExpandedSubs: false}}
	Promote(hubEntries(), states, "")
	if states.Peek(RootInstancePath).ExpandedSubs {
		t.Error("empty target should not change state")
	}
	Promote(hubEntries(), states, RootInstancePath)
	if !states.Peek(RootInstancePath).ExpandedSubs {
		t.Error("promoting root expands its subs")
	}
}

func TestStateMapHelpers(t *testing.T) {
	m := StateMap{}
	if _, ok := m.Lookup("|/|/a"); ok {
		t.Error("lookup should not find missing state")
	}
	if m.Peek(RootInstancePath) != (InstanceState{}) {
		t.Error("peek of a missing state should be collapsed")
	}
	if len(m) != 0 {
		t.Error("Peek/Lookup must not create entries")
	}
	m.ToggleHubs("|/|/a")
	c := m.Clone()
	c["|/|/a"].ExpandedHubs = false
	if !m["|/|/a"].ExpandedHubs {
		t.Error("Clone shares state pointers")
	}
	r := ResetStates()
	if len(r) != 1 || !r[RootInstancePath].ExpandedSubs {
		t.Errorf("unexpected reset states %+v", r)
	}
}

func TestInstancePathHelpers(t *testing.T) {
	if got := SplitInstancePath("|/|/a|/h"); !reflect.DeepEqual(got, []string{"/", "/a", "/h"}) {
		t.Errorf("split = %v", got)
	}
	if BaseOf("|/|/a|/h") != "/h" || BaseOf("x") != "x" {
		t.Error("BaseOf mismatch")
	}
	if !IsWithin("|/|/a|/h", "|/|/a") || IsWithin("|/|/ab", "|/|/a") || !IsWithin("|/|/a", "|/|/a") {
		t.Error("IsWithin mismatch")
	}
}
