package testutil

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/hubtree/pkg/graph"
	"github.com/vanderheijden86/hubtree/pkg/view"
)

func TestGeneratorsAreDeterministic(t *testing.T) {
	a := NewDefault().Random(200, 0.3)
	b := NewDefault().Random(200, 0.3)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different graphs")
	}
}

func TestGeneratedGraphsAreClean(t *testing.T) {
	g := NewDefault()
	tests := []struct {
		name    string
		entries graph.Entries
		size    int
	}{
		{"star", g.Star(300), 301},
		{"chain", g.Chain(10), 11},
		{"tree", g.Tree(3, 4), 1 + 4 + 16 + 64},
		{"shared hubs", g.SharedHubs(5, 3), 1 + 5 + 3},
		{"random", g.Random(100, 0.5), 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.entries) != tt.size {
				t.Errorf("%d entries, want %d", len(tt.entries), tt.size)
			}
			if r := graph.Check(tt.entries); !r.OK() {
				t.Errorf("check: %s", r)
			}
		})
	}
}

func TestStarNames(t *testing.T) {
	es := NewDefault().Star(300)
	if e := es.Get("/n299"); e == nil || e.Name != "node-299" {
		t.Errorf("last leaf = %+v", e)
	}
	if es.Get("/n000") == nil {
		t.Error("names should be zero padded")
	}
}

func TestSubCycleIsReported(t *testing.T) {
	r := graph.Check(NewDefault().SubCycle(3))
	if len(r.SubCycles) != 1 {
		t.Errorf("sub cycles = %v", r.SubCycles)
	}
}

func TestSharedHubsDuplicate(t *testing.T) {
	es := NewDefault().SharedHubs(2, 1)
	states := view.StateMap{}
	states.EnsureRoot()
	states.ToggleHubs("|/|/p0")
	states.ToggleHubs("|/|/p1")
	rows := view.Build(es, states, view.BuildOptions{})
	AssertInstancePaths(t, rows, "|/", "|/|/p0|/hub0", "|/|/p0", "|/|/p1|/hub0", "|/|/p1")
}
