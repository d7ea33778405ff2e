package graph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Dangling is a subs or hubs reference to a base path with no entry.
type Dangling struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"` // "sub" or "hub"
}

// Report is the result of Check.
type Report struct {
	Entries     int        `json:"entries"`
	MissingRoot bool       `json:"missing_root"`
	Dangling    []Dangling `json:"dangling,omitempty"`
	// SubCycles lists groups of entries that reach each other through subs.
	// Hub cycles are normal and not reported.
	SubCycles   [][]string `json:"sub_cycles,omitempty"`
}

// OK reports whether the graph renders without degradation.
func (r Report) OK() bool {
	return !r.MissingRoot && len(r.Dangling) == 0 && len(r.SubCycles) == 0
}

func (r Report) String() string {
	if r.OK() {
		return fmt.Sprintf("%d entries, no problems", r.Entries)
	}
	return fmt.Sprintf("%d entries, missing root: %v, %d dangling references, %d sub cycles",
		r.Entries, r.MissingRoot, len(r.Dangling), len(r.SubCycles))
}

// Check validates the graph shape. It never fails; problems are reported.
func Check(entries Entries) Report {
	report := Report{Entries: len(entries), MissingRoot: !entries.HasRoot()}

	g := simple.NewDirectedGraph()
	idToNode := make(map[string]int64, len(entries))
	nodeToID := make(map[int64]string, len(entries))
	keys := entries.Keys()
	for _, k := range keys {
		n := g.NewNode()
		g.AddNode(n)
		idToNode[k] = n.ID()
		nodeToID[n.ID()] = k
	}

	for _, k := range keys {
		e := entries[k]
		u := idToNode[k]
		for _, s := range e.Subs {
			v, ok := idToNode[s]
			if !ok {
				report.Dangling = append(report.Dangling, Dangling{From: k, To: s, Relation: "sub"})
				continue
			}
			if u == v {
				// simple graphs reject self loops
				report.SubCycles = append(report.SubCycles, []string{k})
				continue
			}
			g.SetEdge(g.NewEdge(g.Node(u), g.Node(v)))
		}
		for _, h := range e.Hubs {
			if _, ok := idToNode[h]; !ok {
				report.Dangling = append(report.Dangling, Dangling{From: k, To: h, Relation: "hub"})
			}
		}
	}

	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		cycle := make([]string, 0, len(scc))
		for _, n := range scc {
			cycle = append(cycle, nodeToID[n.ID()])
		}
		sort.Strings(cycle)
		report.SubCycles = append(report.SubCycles, cycle)
	}
	sort.Slice(report.SubCycles, func(i, j int) bool {
		return report.SubCycles[i][0] < report.SubCycles[j][0]
	})
	return report
}
