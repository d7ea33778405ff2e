package ui

import (
	"log"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/metrics"
)

// hscrollStep is how far one horizontal scroll key moves, in cells.
const hscrollStep = 4

// linesFromDrive converts a persisted vertical offset, measured in units
// of node_height per row, to terminal lines.
func (m *Model) linesFromDrive(v float64) int {
	rh := float64(m.win.Config().RowHeight)
	return max(0, int(math.Round(v/m.nodeHeight*rh)))
}

// linesToDrive is the inverse of linesFromDrive.
func (m *Model) linesToDrive(lines int) float64 {
	rh := float64(m.win.Config().RowHeight)
	return float64(lines) / rh * m.nodeHeight
}

// startFill begins growing the window toward a sentinel that came near
// the viewport. Each chunk is one command round trip, so the screen
// redraws between chunks.
func (m *Model) startFill() tea.Cmd {
	if m.searching() || m.win.Filling() {
		return nil
	}
	if m.win.Detached() {
		m.win.Rebuild(m.win.Total(), m.win.ScrollTop())
	}
	if !m.win.BeginFill(m.win.NeedsFill()) {
		return nil
	}
	return fillCmd(m.win.Generation())
}

func (m *Model) fillStep(gen uint64) tea.Cmd {
	if gen != m.win.Generation() || !m.win.Filling() {
		return nil
	}
	defer metrics.Timer(metrics.WindowFill)()
	metrics.FillChunks.Inc()
	if m.win.FillStep(gen) {
		return fillCmd(gen)
	}
	// The opposite edge may need filling too.
	return m.startFill()
}

// scrolled is called after any local change of scroll position. It keeps
// the window attached and schedules one persistence write per frame.
func (m *Model) scrolled() tea.Cmd {
	cmds := []tea.Cmd{m.startFill()}
	if !m.scrollPending {
		m.scrollPending = true
		cmds = append(cmds, scrollPersistCmd())
	}
	return tea.Batch(cmds...)
}

// persistScroll writes the scroll offsets if they moved since the last
// write or load.
func (m *Model) persistScroll() tea.Cmd {
	top := m.linesToDrive(m.win.ScrollTop())
	left := float64(m.hscroll)
	if top == m.persistedTop && left == m.persistedLeft {
		return nil
	}
	m.beginAction()
	if top != m.persistedTop {
		m.write(docVerticalScroll, top)
		m.persistedTop = top
	}
	if left != m.persistedLeft {
		m.write(docHorizontalScroll, left)
		m.persistedLeft = left
	}
	return m.flush()
}

// scrollBy moves the viewport without moving the cursor.
func (m *Model) scrollBy(delta int) tea.Cmd {
	if m.searching() {
		m.searchTop = m.clampSearchTop(m.searchTop + delta)
		return nil
	}
	m.win.ScrollBy(delta)
	return m.scrolled()
}

func (m *Model) clampSearchTop(top int) int {
	maxTop := max(0, len(m.search.Rows)-m.bodyHeight())
	return min(max(0, top), maxTop)
}

// moveCursor moves the cursor by delta rows and scrolls it into view.
func (m *Model) moveCursor(delta int) tea.Cmd {
	rows := m.currentRows()
	if len(rows) == 0 {
		return nil
	}
	m.cursor = min(max(0, m.cursor+delta), len(rows)-1)
	m.cursorPath = rows[m.cursor].InstancePath
	return m.revealCursor()
}

// revealCursor scrolls the least amount that shows the cursor row.
func (m *Model) revealCursor() tea.Cmd {
	h := m.bodyHeight()
	if m.searching() {
		if m.cursor < m.searchTop {
			m.searchTop = m.cursor
		} else if m.cursor >= m.searchTop+h {
			m.searchTop = m.cursor - h + 1
		}
		m.searchTop = m.clampSearchTop(m.searchTop)
		return nil
	}
	rh := m.win.Config().RowHeight
	top := m.win.ScrollTop()
	rowTop := m.cursor * rh
	switch {
	case rowTop < top:
		top = rowTop
	case rowTop+rh > top+h:
		top = rowTop + rh - h
	default:
		return nil
	}
	m.win.ScrollTo(top)
	return m.scrolled()
}

// scrollHorizontally shifts every row by delta cells.
func (m *Model) scrollHorizontally(delta int) tea.Cmd {
	next := max(0, m.hscroll+delta)
	if next == m.hscroll {
		return nil
	}
	m.hscroll = next
	return m.scrolled()
}

func (m *Model) beginAction() {
	m.version++
}

// write queues a document put stamped with the current action version.
// A queued put of the same path is replaced.
func (m *Model) write(p string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("warning: encoding %s: %v", p, err)
		return
	}
	for i := range m.pending {
		if m.pending[i].path == p {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			break
		}
	}
	m.pending = append(m.pending, docWrite{
		path:   p,
		raw:    raw,
		origin: drive.Origin{Writer: m.writer, Version: m.version},
	})
}

// flush starts writing the queue unless a write is in flight; the rest
// goes out when it completes, so writes reach the drive in order.
func (m *Model) flush() tea.Cmd {
	if m.flushing || len(m.pending) == 0 {
		return nil
	}
	docs := m.pending
	m.pending = nil
	m.flushing = true
	return flushCmd(m.ctx, m.drive, docs)
}
