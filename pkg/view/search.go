package view

import (
	"strings"

	"github.com/vanderheijden86/hubtree/pkg/graph"
	"github.com/vanderheijden86/hubtree/pkg/metrics"
)

// SearchResult is the outcome of Search.
type SearchResult struct {
	Rows []Row
	// States is the layout state of every included row: manual expansion
	// where present, otherwise subs expanded when a descendant matched.
	States StateMap
}

// Matches reports whether name contains query, ignoring case.
func Matches(name, query string) bool {
	return query != "" && strings.Contains(strings.ToLower(name), strings.ToLower(query))
}

type searcher struct {
	entries  graph.Entries
	query    string
	manual   StateMap
	original map[string]bool
	states   StateMap
	// onChain holds the base paths of the sub chain being searched, so a
	// cyclic subs graph cannot recurse forever.
	onChain map[string]bool
}

// Search builds the filtered view for query. A row is included when its
// name matches, when a descendant matches, or when an ancestor was expanded
// by hand in manual, in which case all of that ancestor's children show.
// manual is only read; original marks which rows the default view shows.
func Search(entries graph.Entries, query string, manual StateMap, original []Row) SearchResult {
	defer metrics.Timer(metrics.SearchBuild)()

	s := &searcher{
		entries:  entries,
		query:    query,
		manual:   manual,
		original: make(map[string]bool, len(original)),
		states:   make(StateMap),
		onChain:  make(map[string]bool),
	}
	for _, r := range original {
		s.original[r.InstancePath] = true
	}
	if query == "" || !entries.HasRoot() {
		return SearchResult{States: s.states}
	}
	rows := s.visit(graph.RootPath, "", "", 0, true, false, false, nil, false)
	return SearchResult{Rows: rows, States: s.states}
}

func (s *searcher) visit(basePath, parentInstance, parentBase string, depth int, isLastSub, isHub, isFirstHub bool, parentTrail []bool, expandedChild bool) []Row {
	entry := s.entries.Get(basePath)
	if entry == nil {
		return nil
	}
	instancePath := InstancePath(parentInstance, basePath)
	direct := entry.Name != "" && Matches(entry.Name, s.query)

	in := pipeInput{
		depth:          depth,
		isHub:          isHub,
		isLastSub:      isLastSub,
		isFirstHub:     isFirstHub,
		parentTrail:    parentTrail,
		parentBasePath: parentBase,
		basePath:       basePath,
	}
	childTrail, onTop := childrenPipeTrail(s.entries, in)
	manual, hasManual := s.manual.Lookup(instancePath)

	var hubRows []Row
	if hasManual && manual.ExpandedHubs {
		for i, hub := range entry.Hubs {
			hubRows = append(hubRows, s.visit(hub, instancePath, basePath, depth+1, i == len(entry.Hubs)-1, true, onTop, childTrail, true)...)
		}
	}

	var subRows []Row
	switch {
	case hasManual && manual.ExpandedSubs:
		for i, sub := range entry.Subs {
			subRows = append(subRows, s.visit(sub, instancePath, basePath, depth+1, i == len(entry.Subs)-1, false, false, childTrail, true)...)
		}
	case !expandedChild:
		s.onChain[basePath] = true
		for i, sub := range entry.Subs {
			if s.onChain[sub] {
				continue
			}
			subRows = append(subRows, s.visit(sub, instancePath, basePath, depth+1, i == len(entry.Subs)-1, false, false, childTrail, false)...)
		}
		delete(s.onChain, basePath)
	}

	matchingDescendant := len(subRows) > 0
	if !expandedChild && !direct && !matchingDescendant {
		return nil
	}

	state := InstanceState{ExpandedSubs: matchingDescendant}
	if hasManual {
		state = manual
	}
	s.states[instancePath] = &state

	row := Row{
		BasePath:         basePath,
		InstancePath:     instancePath,
		ParentBasePath:   parentBase,
		Depth:            depth,
		IsLastSub:        isLastSub,
		IsHub:            isHub,
		IsFirstHub:       isFirstHub,
		IsHubOnTop:       onTop,
		ParentPipeTrail:  parentTrail,
		PipeTrail:        rowPipeTrail(in, onTop),
		IsSearchMatch:    true,
		IsDirectMatch:    direct,
		IsInOriginalView: s.original[instancePath],
	}

	out := make([]Row, 0, len(hubRows)+1+len(subRows))
	out = append(out, hubRows...)
	out = append(out, row)
	return append(out, subRows...)
}

// Span is a byte range [Start, End) of a name.
type Span struct {
	Start, End int
}

// HighlightSpans returns the non-overlapping ranges of name that match
// query, ignoring case. The query is matched literally.
func HighlightSpans(name, query string) []Span {
	if query == "" {
		return nil
	}
	lowerName := strings.ToLower(name)
	lowerQuery := strings.ToLower(query)
	if len(lowerName) != len(name) {
		// Lowercasing changed byte lengths, so offsets would not line up.
		return nil
	}
	var spans []Span
	for from := 0; from <= len(lowerName)-len(lowerQuery); {
		i := strings.Index(lowerName[from:], lowerQuery)
		if i < 0 {
			break
		}
		start := from + i
		spans = append(spans, Span{Start: start, End: start + len(lowerQuery)})
		from = start + len(lowerQuery)
	}
	return spans
}
