package view

import "github.com/vanderheijden86/hubtree/pkg/graph"

// Promote expands every ancestor of target in states so that target shows
// up in the default view. At each step the parent's subs or hubs are
// expanded depending on which list holds the next base path; both are
// expanded when both do. The root's subs are always expanded.
func Promote(entries graph.Entries, states StateMap, target string) {
	parts := SplitInstancePath(target)
	if len(parts) == 0 {
		return
	}
	states.GetOrCreate(RootInstancePath).ExpandedSubs = true

	parent := ""
	for i := 0; i < len(parts)-1; i++ {
		parent = InstancePath(parent, parts[i])
		child := parts[i+1]
		entry := entries.Get(parts[i])
		if entry == nil {
			continue
		}
		state := states.GetOrCreate(parent)
		if entries.IsSub(parts[i], child) {
			state.ExpandedSubs = true
		}
		if entries.IsHub(parts[i], child) {
			state.ExpandedHubs = true
		}
	}
}
