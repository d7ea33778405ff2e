package view

// Row describes one visible node for a single render pass. Rows are built
// fresh on every rebuild and never modified afterwards.
type Row struct {
	BasePath       string
	InstancePath   string
	ParentBasePath string
	Depth          int

	IsLastSub  bool
	IsHub      bool
	IsFirstHub bool
	IsHubOnTop bool

	// ParentPipeTrail is the trail the parent handed down. PipeTrail is the
	// trail this row draws, which differs for hubs that close or open a
	// chain.
	ParentPipeTrail []bool
	PipeTrail       []bool

	IsSearchMatch    bool
	IsDirectMatch    bool
	IsInOriginalView bool
}

// IsRoot reports whether the row is the graph root.
func (r Row) IsRoot() bool { return r.InstancePath == RootInstancePath }

// IndexOf returns the index of instancePath in rows, or -1.
func IndexOf(rows []Row, instancePath string) int {
	for i := range rows {
		if rows[i].InstancePath == instancePath {
			return i
		}
	}
	return -1
}

// InstancePaths returns the instance paths of rows in order.
func InstancePaths(rows []Row) []string {
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].InstancePath
	}
	return out
}
