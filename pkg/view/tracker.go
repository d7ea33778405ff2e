package view

// Tracker records, for every base path in the view, the instance paths it
// is currently shown at, in first-seen order. It is kept up to date on each
// toggle by looking only at the toggled subtree.
type Tracker struct {
	order map[string][]string
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{order: make(map[string][]string)}
}

// Add records instancePath for basePath unless it is already tracked.
func (t *Tracker) Add(basePath, instancePath string) {
	for _, p := range t.order[basePath] {
		if p == instancePath {
			return
		}
	}
	t.order[basePath] = append(t.order[basePath], instancePath)
}

// Remove forgets instancePath. The key goes away with its last instance.
func (t *Tracker) Remove(basePath, instancePath string) {
	list := t.order[basePath]
	for i, p := range list {
		if p != instancePath {
			continue
		}
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(t.order, basePath)
		} else {
			t.order[basePath] = list
		}
		return
	}
}

// Rebuild resyncs the tracker with rows. Instances already tracked keep
// their order; new ones are appended in view order.
func (t *Tracker) Rebuild(rows []Row) {
	present := make(map[string][]string, len(rows))
	var bases []string
	for _, r := range rows {
		if _, ok := present[r.BasePath]; !ok {
			bases = append(bases, r.BasePath)
		}
		present[r.BasePath] = append(present[r.BasePath], r.InstancePath)
	}

	next := make(map[string][]string, len(present))
	for _, base := range bases {
		inView := make(map[string]bool, len(present[base]))
		for _, p := range present[base] {
			inView[p] = true
		}
		var list []string
		kept := make(map[string]bool)
		for _, p := range t.order[base] {
			if inView[p] && !kept[p] {
				list = append(list, p)
				kept[p] = true
			}
		}
		for _, p := range present[base] {
			if !kept[p] {
				list = append(list, p)
				kept[p] = true
			}
		}
		next[base] = list
	}
	t.order = next
}

// block returns the rows of focal's subtree: focal itself plus every row
// whose instance path descends from it. They are contiguous in a view.
func block(rows []Row, focal string) []Row {
	i := IndexOf(rows, focal)
	if i < 0 {
		return nil
	}
	start, end := i, i+1
	for start > 0 && IsWithin(rows[start-1].InstancePath, focal) {
		start--
	}
	for end < len(rows) && IsWithin(rows[end].InstancePath, focal) {
		end++
	}
	return rows[start:end]
}

// Apply updates the tracker after focal was toggled, old being the view
// before and next the view after. Only focal's subtree is compared.
func (t *Tracker) Apply(old, next []Row, focal string) {
	before := block(old, focal)
	after := block(next, focal)

	inAfter := make(map[string]bool, len(after))
	for _, r := range after {
		inAfter[r.InstancePath] = true
	}
	inBefore := make(map[string]bool, len(before))
	for _, r := range before {
		inBefore[r.InstancePath] = true
		if !inAfter[r.InstancePath] {
			t.Remove(r.BasePath, r.InstancePath)
		}
	}
	for _, r := range after {
		if !inBefore[r.InstancePath] {
			t.Add(r.BasePath, r.InstancePath)
		}
	}
}

// HasDuplicates reports whether basePath is shown more than once.
func (t *Tracker) HasDuplicates(basePath string) bool {
	return len(t.order[basePath]) > 1
}

// Instances returns the tracked instance paths of basePath.
func (t *Tracker) Instances(basePath string) []string {
	return append([]string(nil), t.order[basePath]...)
}

// Next returns the occurrence after current, wrapping around. An untracked
// current yields the first occurrence. ok is false when basePath has no
// duplicates.
func (t *Tracker) Next(basePath, current string) (string, bool) {
	list := t.order[basePath]
	if len(list) <= 1 {
		return "", false
	}
	for i, p := range list {
		if p == current {
			return list[(i+1)%len(list)], true
		}
	}
	return list[0], true
}

// Len returns the number of tracked base paths.
func (t *Tracker) Len() int { return len(t.order) }

// Snapshot returns a copy of the tracked order, for persisting.
func (t *Tracker) Snapshot() map[string][]string {
	out := make(map[string][]string, len(t.order))
	for k, v := range t.order {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Load replaces the tracked order. The next Rebuild drops whatever is not
// in the view.
func (t *Tracker) Load(order map[string][]string) {
	t.order = make(map[string][]string, len(order))
	for k, v := range order {
		if len(v) > 0 {
			t.order[k] = append([]string(nil), v...)
		}
	}
}
