package view

import "github.com/vanderheijden86/hubtree/pkg/graph"

// pipeInput is what the trail calculations need to know about a node.
type pipeInput struct {
	depth          int
	isHub          bool
	isLastSub      bool
	isFirstHub     bool
	parentTrail    []bool
	parentBasePath string
	basePath       string
}

// hubOnTop reports whether basePath is the first hub of its parent or the
// graph root.
func hubOnTop(entries graph.Entries, parentBasePath, basePath string) bool {
	if basePath == graph.RootPath {
		return true
	}
	return parentBasePath != "" && entries.FirstHub(parentBasePath) == basePath
}

// setLast overwrites the trailing slot. An empty trail is left alone.
func setLast(trail []bool, v bool) {
	if len(trail) > 0 {
		trail[len(trail)-1] = v
	}
}

// childrenPipeTrail returns the trail handed to a node's children and
// whether the node sits on top of its parent's hub chain.
func childrenPipeTrail(entries graph.Entries, in pipeInput) ([]bool, bool) {
	trail := make([]bool, len(in.parentTrail), len(in.parentTrail)+1)
	copy(trail, in.parentTrail)
	onTop := hubOnTop(entries, in.parentBasePath, in.basePath)

	if in.depth > 0 {
		if in.isHub {
			if in.isLastSub {
				setLast(trail, true)
			}
			if onTop && !in.isLastSub {
				setLast(trail, true)
			}
			if in.isFirstHub {
				setLast(trail, false)
			}
		}
		trail = append(trail, in.isHub || !in.isLastSub)
	}
	return trail, onTop
}

// rowPipeTrail returns the trail a node draws for its own row. Hubs that
// are last in their chain or on top get an adjusted copy; everything else
// draws the parent's trail.
func rowPipeTrail(in pipeInput, onTop bool) []bool {
	if in.depth == 0 || !in.isHub || !(in.isLastSub || onTop) {
		return in.parentTrail
	}
	last := make([]bool, len(in.parentTrail))
	copy(last, in.parentTrail)
	if in.isLastSub {
		setLast(last, true)
		if in.isFirstHub {
			setLast(last, false)
		}
	}
	if onTop && !in.isLastSub {
		setLast(last, true)
	}
	return last
}
