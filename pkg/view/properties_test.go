package view

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/hubtree/pkg/graph"
)

var names = []string{"alpha", "beta", "gamma", "delta", "ab", "ba"}

// genEntries draws a small graph. With acyclic set, subs only point to
// later nodes so every sub chain is finite.
func genEntries(t *rapid.T, acyclic bool) graph.Entries {
	n := rapid.IntRange(1, 7).Draw(t, "n")
	paths := make([]string, n)
	paths[0] = graph.RootPath
	for i := 1; i < n; i++ {
		paths[i] = fmt.Sprintf("/n%d", i)
	}
	entries := graph.Entries{}
	for i, p := range paths {
		e := &graph.Entry{Name: rapid.SampledFrom(names).Draw(t, "name"), Type: graph.TypeFolder}
		// a child appears at most once per parent so instance paths stay unique
		used := map[string]bool{}
		lo := 0
		if acyclic {
			lo = i + 1
		}
		subCount := rapid.IntRange(0, 3).Draw(t, "subs")
		for j := 0; j < subCount && lo < n; j++ {
			target := paths[rapid.IntRange(lo, n-1).Draw(t, "sub")]
			if !used[target] {
				used[target] = true
				e.Subs = append(e.Subs, target)
			}
		}
		if rapid.Bool().Draw(t, "dangling") {
			e.Subs = append(e.Subs, "/missing")
		}
		hubCount := rapid.IntRange(0, 2).Draw(t, "hubs")
		for j := 0; j < hubCount; j++ {
			target := paths[rapid.IntRange(0, n-1).Draw(t, "hub")]
			if !used[target] {
				used[target] = true
				e.Hubs = append(e.Hubs, target)
			}
		}
		entries[p] = e
	}
	return entries
}

// genStates expands random rows of the view a few times.
func genStates(t *rapid.T, entries graph.Entries) StateMap {
	states := ResetStates()
	steps := rapid.IntRange(0, 6).Draw(t, "steps")
	for i := 0; i < steps; i++ {
		rows := Build(entries, states, BuildOptions{})
		if len(rows) == 0 || len(rows) > 200 {
			break
		}
		r := rows[rapid.IntRange(0, len(rows)-1).Draw(t, "row")]
		if rapid.Bool().Draw(t, "hubs") {
			states.ToggleHubs(r.InstancePath)
		} else {
			states.ToggleSubs(r.InstancePath)
		}
	}
	return states
}

func parentOf(instancePath string) string {
	return instancePath[:strings.LastIndex(instancePath, "|")]
}

func TestProperty_BuildIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries(t, false)
		states := genStates(t, entries)
		a := Build(entries, states.Clone(), BuildOptions{})
		b := Build(entries, states.Clone(), BuildOptions{})
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("builds differ:\n%v\n%v", InstancePaths(a), InstancePaths(b))
		}
	})
}

func TestProperty_HubsAboveSubsBelow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries(t, false)
		rows := Build(entries, genStates(t, entries), BuildOptions{})
		index := make(map[string]int, len(rows))
		for i, r := range rows {
			if _, dup := index[r.InstancePath]; dup {
				t.Fatalf("instance path %s emitted twice", r.InstancePath)
			}
			index[r.InstancePath] = i
		}
		for i, r := range rows {
			if r.IsRoot() {
				continue
			}
			p, ok := index[parentOf(r.InstancePath)]
			if !ok {
				t.Fatalf("row %s has no parent row", r.InstancePath)
			}
			if r.IsHub && i >= p {
				t.Fatalf("hub %s at %d not above parent at %d", r.InstancePath, i, p)
			}
			if !r.IsHub && i <= p {
				t.Fatalf("sub %s at %d not below parent at %d", r.InstancePath, i, p)
			}
			if len(r.PipeTrail) != len(r.ParentPipeTrail) {
				t.Fatalf("row %s trail length %d, parent trail %d", r.InstancePath, len(r.PipeTrail), len(r.ParentPipeTrail))
			}
			if r.Depth > 0 && len(r.PipeTrail) != r.Depth-1 {
				t.Fatalf("row %s at depth %d has trail of %d", r.InstancePath, r.Depth, len(r.PipeTrail))
			}
		}
	})
}

func TestProperty_ToggleRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries(t, false)
		states := genStates(t, entries)
		before := Build(entries, states, BuildOptions{})
		if len(before) == 0 {
			return
		}
		target := before[rapid.IntRange(0, len(before)-1).Draw(t, "target")].InstancePath
		hubs := rapid.Bool().Draw(t, "hubs")
		toggle := states.ToggleSubs
		if hubs {
			toggle = states.ToggleHubs
		}
		toggle(target)
		Build(entries, states, BuildOptions{})
		toggle(target)
		after := Build(entries, states, BuildOptions{})
		if !reflect.DeepEqual(before, after) {
			t.Fatalf("round trip changed view:\n%v\n%v", InstancePaths(before), InstancePaths(after))
		}
	})
}

func trackedSet(tr *Tracker) map[string][]string {
	out := tr.Snapshot()
	for k := range out {
		sort.Strings(out[k])
	}
	return out
}

func TestProperty_TrackerApplyMatchesRebuild(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries(t, false)
		states := genStates(t, entries)
		old := Build(entries, states, BuildOptions{})
		if len(old) == 0 {
			return
		}
		tr := NewTracker()
		tr.Rebuild(old)

		target := old[rapid.IntRange(0, len(old)-1).Draw(t, "target")].InstancePath
		if rapid.Bool().Draw(t, "hubs") {
			states.ToggleHubs(target)
		} else {
			states.ToggleSubs(target)
		}
		next := Build(entries, states, BuildOptions{})
		tr.Apply(old, next, target)

		full := NewTracker()
		full.Rebuild(next)
		if got, want := trackedSet(tr), trackedSet(full); !reflect.DeepEqual(got, want) {
			t.Fatalf("incremental %v != rebuilt %v", got, want)
		}
	})
}

func TestProperty_NextVisitsAll(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(t, "n")
		tr := NewTracker()
		var paths []string
		for i := 0; i < n; i++ {
			p := fmt.Sprintf("|/|/p%d|/h", i)
			paths = append(paths, p)
			tr.Add("/h", p)
		}
		start := paths[rapid.IntRange(0, n-1).Draw(t, "start")]
		seen := map[string]bool{}
		cur := start
		for i := 0; i < n; i++ {
			next, ok := tr.Next("/h", cur)
			if !ok {
				t.Fatal("no next")
			}
			seen[next] = true
			cur = next
		}
		if cur != start || len(seen) != n {
			t.Fatalf("cycle of %d visited %d and ended at %s", n, len(seen), cur)
		}
	})
}

// subPaths enumerates every root-to-node instance path through subs.
func subPaths(entries graph.Entries, base, parent string, visit func(string, string)) {
	if entries.Get(base) == nil {
		return
	}
	inst := InstancePath(parent, base)
	visit(inst, base)
	for _, s := range entries.Get(base).Subs {
		subPaths(entries, s, inst, visit)
	}
}

func TestProperty_SearchInclusionLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries(t, true)
		query := rapid.SampledFrom([]string{"a", "ph", "BETA", "ga", "zz"}).Draw(t, "query")

		res := Search(entries, query, StateMap{}, nil)

		want := map[string]bool{}
		subPaths(entries, graph.RootPath, "", func(inst, base string) {
			if Matches(entries.Get(base).Name, query) {
				for p := inst; p != ""; p = parentOf(p) {
					want[p] = true
				}
			}
		})
		got := map[string]bool{}
		for _, r := range res.Rows {
			got[r.InstancePath] = true
			if r.IsDirectMatch != Matches(entries.Get(r.BasePath).Name, query) {
				t.Fatalf("direct match flag wrong for %s", r.InstancePath)
			}
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("search rows %v, want %v", got, want)
		}
	})
}

func TestProperty_SearchRowsAreJustified(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries(t, false)
		manual := genStates(t, entries)
		query := rapid.SampledFrom([]string{"a", "et", "zz"}).Draw(t, "query")
		res := Search(entries, query, manual, nil)

		included := map[string]bool{}
		hasSubChild := map[string]bool{}
		for _, r := range res.Rows {
			included[r.InstancePath] = true
			if !r.IsRoot() && !r.IsHub {
				hasSubChild[parentOf(r.InstancePath)] = true
			}
		}
		for _, r := range res.Rows {
			forced := false
			if !r.IsRoot() {
				parent := parentOf(r.InstancePath)
				if !included[parent] {
					t.Fatalf("row %s shown without its parent", r.InstancePath)
				}
				ps := manual.Peek(parent)
				forced = (r.IsHub && ps.ExpandedHubs) || (!r.IsHub && ps.ExpandedSubs)
			}
			if !r.IsDirectMatch && !forced && !hasSubChild[r.InstancePath] {
				t.Fatalf("row %s included without reason", r.InstancePath)
			}
			if _, ok := res.States[r.InstancePath]; !ok {
				t.Fatalf("row %s has no search state", r.InstancePath)
			}
		}
	})
}
