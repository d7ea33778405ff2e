package view

import (
	"github.com/vanderheijden86/hubtree/pkg/graph"
	"github.com/vanderheijden86/hubtree/pkg/metrics"
)

// BuildOptions tunes Build.
type BuildOptions struct {
	// SuppressDuplicateHubs skips a hub whose base path is already in the
	// view, so every entry reached through hubs renders once.
	SuppressDuplicateHubs bool
}

type builder struct {
	entries graph.Entries
	states  StateMap
	opts    BuildOptions
	seen    map[string]bool
	rows    []Row
}

// Build flattens the graph from the root into visible rows: for every node,
// its expanded hubs first, then the node itself, then its expanded subs.
// Missing entries contribute no rows. States missing from the map are
// created collapsed, the root included; see StateMap.EnsureRoot.
func Build(entries graph.Entries, states StateMap, opts BuildOptions) []Row {
	defer metrics.Timer(metrics.ViewBuild)()

	if !entries.HasRoot() {
		return nil
	}
	b := &builder{
		entries: entries,
		states:  states,
		opts:    opts,
	}
	if opts.SuppressDuplicateHubs {
		b.seen = make(map[string]bool)
	}
	b.visit(graph.RootPath, "", "", 0, true, false, false, nil)
	return b.rows
}

func (b *builder) visit(basePath, parentInstance, parentBase string, depth int, isLastSub, isHub, isFirstHub bool, parentTrail []bool) {
	entry := b.entries.Get(basePath)
	if entry == nil {
		return
	}
	instancePath := InstancePath(parentInstance, basePath)
	state := b.states.GetOrCreate(instancePath)
	if b.seen != nil {
		b.seen[basePath] = true
	}

	in := pipeInput{
		depth:          depth,
		isHub:          isHub,
		isLastSub:      isLastSub,
		isFirstHub:     isFirstHub,
		parentTrail:    parentTrail,
		parentBasePath: parentBase,
		basePath:       basePath,
	}
	childTrail, onTop := childrenPipeTrail(b.entries, in)

	if state.ExpandedHubs {
		for i, hub := range entry.Hubs {
			if b.seen != nil && b.seen[hub] {
				continue
			}
			b.visit(hub, instancePath, basePath, depth+1, i == len(entry.Hubs)-1, true, isHub && onTop, childTrail)
		}
	}

	b.rows = append(b.rows, Row{
		BasePath:        basePath,
		InstancePath:    instancePath,
		ParentBasePath:  parentBase,
		Depth:           depth,
		IsLastSub:       isLastSub,
		IsHub:           isHub,
		IsFirstHub:      isFirstHub,
		IsHubOnTop:      onTop,
		ParentPipeTrail: parentTrail,
		PipeTrail:       rowPipeTrail(in, onTop),
	})

	if state.ExpandedSubs {
		for i, sub := range entry.Subs {
			b.visit(sub, instancePath, basePath, depth+1, i == len(entry.Subs)-1, false, false, childTrail)
		}
	}
}
