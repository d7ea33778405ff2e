// Package testutil generates entry graphs for tests and benchmarks. Every
// generator is deterministic for a given seed.
package testutil

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/vanderheijden86/hubtree/pkg/graph"
)

// GeneratorConfig controls generation.
type GeneratorConfig struct {
	Seed int64 // 0 seeds from the clock
	// FileRatio is the share of leaves typed as files rather than folders.
	FileRatio float64
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, FileRatio: 0.7}
}

// Generator builds graphs of various shapes.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New returns a Generator for cfg.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault returns a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func root(subs ...string) graph.Entries {
	return graph.Entries{graph.RootPath: {Name: "root", Type: graph.TypeRoot, Subs: subs}}
}

// pad formats i with as many digits as n-1 needs, so names sort in order.
func pad(i, n int) string {
	width := len(strconv.Itoa(max(0, n-1)))
	return fmt.Sprintf("%0*d", width, i)
}

func (g *Generator) leafType() string {
	if g.rng.Float64() < g.cfg.FileRatio {
		return "txt-file"
	}
	return graph.TypeFolder
}

// Star is a root with n leaf subs /n0../n{n-1}, named node-0..node-{n-1}.
func (g *Generator) Star(n int) graph.Entries {
	es := root()
	for i := 0; i < n; i++ {
		p := "/n" + pad(i, n)
		es[graph.RootPath].Subs = append(es[graph.RootPath].Subs, p)
		es[p] = &graph.Entry{Name: "node-" + pad(i, n), Type: g.leafType()}
	}
	return es
}

// Chain nests depth folders: / > /c0 > /c0/c1 > ...
func (g *Generator) Chain(depth int) graph.Entries {
	es := root()
	parent := graph.RootPath
	prefix := ""
	for i := 0; i < depth; i++ {
		p := prefix + "/c" + strconv.Itoa(i)
		es[parent].Subs = []string{p}
		es[p] = &graph.Entry{Name: "c" + strconv.Itoa(i), Type: graph.TypeFolder}
		parent, prefix = p, p
	}
	return es
}

// Tree is a complete tree of the given depth where every folder has
// breadth subs.
func (g *Generator) Tree(depth, breadth int) graph.Entries {
	es := root()
	var grow func(parent, prefix string, level int)
	grow = func(parent, prefix string, level int) {
		if level == depth {
			return
		}
		for i := 0; i < breadth; i++ {
			p := prefix + "/" + strconv.Itoa(i)
			es[parent].Subs = append(es[parent].Subs, p)
			typ := graph.TypeFolder
			if level == depth-1 {
				typ = g.leafType()
			}
			es[p] = &graph.Entry{Name: p[1:], Type: typ}
			grow(p, p, level+1)
		}
	}
	grow(graph.RootPath, "", 0)
	return es
}

// SharedHubs gives every one of parents root subs the same hubs shared
// entries, so each hub appears once per expanded parent.
func (g *Generator) SharedHubs(parents, hubs int) graph.Entries {
	es := root()
	var hubPaths []string
	for i := 0; i < hubs; i++ {
		p := "/hub" + pad(i, hubs)
		hubPaths = append(hubPaths, p)
		es[p] = &graph.Entry{Name: "hub-" + pad(i, hubs), Type: graph.TypeFolder}
	}
	for i := 0; i < parents; i++ {
		p := "/p" + pad(i, parents)
		es[graph.RootPath].Subs = append(es[graph.RootPath].Subs, p)
		es[p] = &graph.Entry{Name: "parent-" + pad(i, parents), Type: graph.TypeFolder, Hubs: append([]string(nil), hubPaths...)}
	}
	return es
}

// SubCycle puts size folders under the root whose subs form a loop.
func (g *Generator) SubCycle(size int) graph.Entries {
	es := root("/k0")
	for i := 0; i < size; i++ {
		p := "/k" + strconv.Itoa(i)
		next := "/k" + strconv.Itoa((i+1)%size)
		es[p] = &graph.Entry{Name: "k" + strconv.Itoa(i), Type: graph.TypeFolder, Subs: []string{next}}
	}
	return es
}

// Random builds a sub tree of size entries under the root, each attached
// to a random earlier folder, then links each entry to an earlier one as
// a hub with probability hubDensity.
func (g *Generator) Random(size int, hubDensity float64) graph.Entries {
	es := root()
	paths := []string{graph.RootPath}
	for i := 0; i < size; i++ {
		parent := paths[g.rng.Intn(len(paths))]
		p := "/r" + pad(i, size)
		es[parent].Subs = append(es[parent].Subs, p)
		es[p] = &graph.Entry{Name: "entry-" + pad(i, size), Type: graph.TypeFolder}
		paths = append(paths, p)
	}
	for _, p := range paths[1:] {
		if g.rng.Float64() >= hubDensity {
			continue
		}
		target := paths[1+g.rng.Intn(len(paths)-1)]
		if target != p {
			es[p].Hubs = append(es[p].Hubs, target)
		}
	}
	for _, p := range paths[1:] {
		if len(es[p].Subs) == 0 {
			es[p].Type = g.leafType()
		}
	}
	return es
}
