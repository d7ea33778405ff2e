// Package vscroll tracks which slice of a long row list is materialized.
//
// A Window keeps [start, end) of the view rendered. Two sentinels stand in
// for the rows above and below, sized so the scrollable height matches the
// full list. When a sentinel comes within the root margin of the viewport
// the window grows one chunk at a time toward it, trimming the far edge
// once more than Limit rows are live.
//
// Units are abstract: RowHeight converts row counts to scroll offsets. The
// terminal uses RowHeight 1, so offsets are line numbers.
package vscroll

// Config sizes a Window.
type Config struct {
	ChunkSize   int
	MaxRendered int
	RowHeight   int
	RootMargin  int
}

// DefaultConfig mirrors the browser defaults scaled to terminal lines.
func DefaultConfig() Config {
	return Config{ChunkSize: 50, MaxRendered: 150, RowHeight: 1, RootMargin: 32}
}

func (c Config) normalized() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 50
	}
	if c.MaxRendered < 2*c.ChunkSize {
		c.MaxRendered = 2 * c.ChunkSize
	}
	if c.RowHeight <= 0 {
		c.RowHeight = 1
	}
	if c.RootMargin < 0 {
		c.RootMargin = 0
	}
	return c
}

// Direction is the edge a fill grows.
type Direction int

const (
	None Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "none"
}

// Window is the materialized range of a view. It is not safe for concurrent
// use; the explorer drives it from its update loop.
type Window struct {
	cfg Config

	start, end int
	total      int

	scrollTop int
	viewport  int
	spacer    int

	filling bool
	fillDir Direction
	gen     uint64
}

// New returns an empty window.
func New(cfg Config) *Window {
	return &Window{cfg: cfg.normalized()}
}

// Config returns the window's configuration.
func (w *Window) Config() Config { return w.cfg }

// Start is the first rendered index.
func (w *Window) Start() int { return w.start }

// End is one past the last rendered index.
func (w *Window) End() int { return w.end }

// Total is the length of the view.
func (w *Window) Total() int { return w.total }

// Rendered is the number of live rows.
func (w *Window) Rendered() int { return w.end - w.start }

// Generation changes on every Rebuild. Fill steps carry the generation
// they started in so a rebuild supersedes them.
func (w *Window) Generation() uint64 { return w.gen }

// Filling reports whether a fill is in progress.
func (w *Window) Filling() bool { return w.filling }

// TopSentinel is the height standing in for the rows above the window.
func (w *Window) TopSentinel() int { return w.start * w.cfg.RowHeight }

// BottomSentinel is the height standing in for the rows below the window.
func (w *Window) BottomSentinel() int { return (w.total - w.end) * w.cfg.RowHeight }

// IsRendered reports whether row i is materialized.
func (w *Window) IsRendered(i int) bool { return i >= w.start && i < w.end }

// SetViewport sets the visible height.
func (w *Window) SetViewport(h int) {
	if h < 0 {
		h = 0
	}
	w.viewport = h
	w.scrollTop = w.clamp(w.scrollTop)
	w.cleanup(Up)
}

// Viewport returns the visible height.
func (w *Window) Viewport() int { return w.viewport }

// Limit is the most rows the window keeps live: MaxRendered, raised to
// cover the viewport and both margins plus one chunk of fill overshoot.
// Below that, trimming one edge pulls it back inside its margin.
func (w *Window) Limit() int {
	rh := w.cfg.RowHeight
	span := (w.viewport + 2*w.cfg.RootMargin + rh - 1) / rh
	return max(w.cfg.MaxRendered, span+w.cfg.ChunkSize+1)
}

// Rebuild re-anchors the window on a new view of total rows, scrolled to
// scrollTop. It renders ChunkSize rows on each side of the anchor row and
// cancels any fill in flight.
func (w *Window) Rebuild(total, scrollTop int) {
	if total < 0 {
		total = 0
	}
	w.total = total
	anchor := scrollTop / w.cfg.RowHeight
	if anchor < 0 {
		anchor = 0
	}
	w.start = max(0, anchor-w.cfg.ChunkSize)
	w.end = min(total, anchor+w.cfg.ChunkSize)
	if w.start > w.end {
		// anchor past the end of a shrunken view
		w.start = max(0, w.end-w.cfg.ChunkSize)
	}
	w.cleanup(Up)
	w.gen++
	w.filling = false
	w.fillDir = None
	w.scrollTop = w.clamp(scrollTop)
}

// ContentHeight is the scrollable height including the spacer.
func (w *Window) ContentHeight() int {
	return w.total*w.cfg.RowHeight + w.spacer
}

// MaxScrollTop is the largest offset that still fills the viewport.
func (w *Window) MaxScrollTop() int {
	return max(0, w.ContentHeight()-w.viewport)
}

func (w *Window) clamp(top int) int {
	return min(max(0, top), w.MaxScrollTop())
}

// ScrollTop returns the current offset.
func (w *Window) ScrollTop() int { return w.scrollTop }

// ScrollTo moves to top, clamped. Reaching the top from below removes the
// spacer.
func (w *Window) ScrollTo(top int) int {
	prev := w.scrollTop
	w.scrollTop = w.clamp(top)
	if w.spacer > 0 && prev > w.scrollTop && w.scrollTop == 0 {
		w.spacer = 0
	}
	return w.scrollTop
}

// ScrollBy moves by delta.
func (w *Window) ScrollBy(delta int) int {
	return w.ScrollTo(w.scrollTop + delta)
}

// Spacer returns the height of the spacer below the content.
func (w *Window) Spacer() int { return w.spacer }

// PlaceSpacer sizes the spacer so that targetTop stays reachable after the
// view changed to total rows. Called when hubs are toggled, since hubs grow
// the view above the clicked row.
func (w *Window) PlaceSpacer(total, targetTop int) {
	maxTop := total*w.cfg.RowHeight - w.viewport
	if targetTop > maxTop {
		w.spacer = targetTop - max(0, maxTop)
	} else {
		w.spacer = 0
	}
	w.scrollTop = w.clamp(w.scrollTop)
}

// ClearSpacer removes the spacer.
func (w *Window) ClearSpacer() {
	w.spacer = 0
	w.scrollTop = w.clamp(w.scrollTop)
}

// NeedsFill returns the edge whose sentinel lies within the root margin of
// the viewport, preferring the bottom.
func (w *Window) NeedsFill() Direction {
	lo := w.scrollTop - w.cfg.RootMargin
	hi := w.scrollTop + w.viewport + w.cfg.RootMargin
	if w.end < w.total && w.end*w.cfg.RowHeight < hi {
		return Down
	}
	if w.start > 0 && w.start*w.cfg.RowHeight > lo {
		return Up
	}
	return None
}

// BeginFill takes the fill lock for dir. It fails when a fill is already
// running or nothing needs filling.
func (w *Window) BeginFill(dir Direction) bool {
	if w.filling || dir == None {
		return false
	}
	w.filling = true
	w.fillDir = dir
	return true
}

// FillStep renders one chunk toward the current fill direction and reports
// whether another step is needed. A step from an older generation does
// nothing.
func (w *Window) FillStep(gen uint64) bool {
	if gen != w.gen || !w.filling {
		return false
	}
	switch w.fillDir {
	case Down:
		w.RenderNextChunk()
	case Up:
		w.RenderPrevChunk()
	}
	if w.NeedsFill() == w.fillDir {
		return true
	}
	w.EndFill()
	return false
}

// EndFill releases the fill lock.
func (w *Window) EndFill() {
	w.filling = false
	w.fillDir = None
}

// RenderNextChunk extends the window down by one chunk.
func (w *Window) RenderNextChunk() {
	if w.end >= w.total {
		return
	}
	w.end = min(w.total, w.end+w.cfg.ChunkSize)
	w.cleanup(Down)
}

// RenderPrevChunk extends the window up by one chunk.
func (w *Window) RenderPrevChunk() {
	if w.start <= 0 {
		return
	}
	w.start = max(0, w.start-w.cfg.ChunkSize)
	w.cleanup(Up)
}

// cleanup trims the edge opposite to grown once too many rows are live.
func (w *Window) cleanup(grown Direction) {
	excess := w.end - w.start - w.Limit()
	if excess <= 0 {
		return
	}
	if grown == Up {
		w.end -= excess
	} else {
		w.start += excess
	}
}

// VisibleRange returns the row indices [first, last) the viewport covers.
func (w *Window) VisibleRange() (int, int) {
	rh := w.cfg.RowHeight
	first := w.scrollTop / rh
	last := (w.scrollTop + w.viewport + rh - 1) / rh
	return min(first, w.total), min(last, w.total)
}

// Detached reports whether the viewport lies entirely outside the window,
// which happens after a jump. The caller should Rebuild at the current
// offset instead of filling chunk by chunk.
func (w *Window) Detached() bool {
	first, last := w.VisibleRange()
	if first >= last {
		return false
	}
	return last <= w.start || first >= w.end
}
