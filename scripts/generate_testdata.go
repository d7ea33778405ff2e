//go:build ignore

// generate_testdata.go writes directory drives for benchmarking the explorer.
// Usage: go run scripts/generate_testdata.go
//
// Creates testdata/benchmark/<name>/ for each dataset below. Open one with
//
//	hubtree --drive testdata/benchmark/large --hubs default
package main

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/graph"
	"github.com/vanderheijden86/hubtree/pkg/testutil"
	"github.com/vanderheijden86/hubtree/pkg/view"
)

type dataset struct {
	name    string
	size    int
	density float64
}

var datasets = []dataset{
	{"small", 100, 0.10},
	{"medium", 1000, 0.05},
	{"large", 5000, 0.02},
	{"huge", 20000, 0.01},
}

func main() {
	outputDir := filepath.Join("testdata", "benchmark")
	for _, ds := range datasets {
		fmt.Printf("Generating %s (%d entries)...\n", ds.name, ds.size)
		gen := testutil.New(testutil.GeneratorConfig{Seed: int64(ds.size), FileRatio: 0.7})
		if err := write(filepath.Join(outputDir, ds.name), gen.Random(ds.size, ds.density)); err != nil {
			fmt.Fprintf(os.Stderr, "generate %s: %v\n", ds.name, err)
			os.Exit(1)
		}
	}
	fmt.Println("Done.")
}

func write(dir string, entries graph.Entries) error {
	raw, err := entries.Marshal()
	if err != nil {
		return err
	}
	docs := drive.Defaults()
	docs["entries/entries.json"] = raw
	// Open every folder so the whole graph is on screen.
	if docs["runtime/instance_states.json"], err = expandAll(entries); err != nil {
		return err
	}

	for p, b := range docs {
		file := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(file, b, 0o644); err != nil {
			return err
		}
	}
	report := graph.Check(entries)
	fmt.Printf("  %s: %s\n", dir, report)
	return nil
}

func expandAll(entries graph.Entries) ([]byte, error) {
	states := view.StateMap{}
	var walk func(instance, base string)
	walk = func(instance, base string) {
		e := entries.Get(base)
		if !e.HasSubs() {
			return
		}
		states[instance] = &view.InstanceState{ExpandedSubs: true}
		for _, sub := range e.Subs {
			walk(view.InstancePath(instance, sub), sub)
		}
	}
	walk(view.RootInstancePath, graph.RootPath)
	return json.Marshal(states)
}
