package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/view"
	"github.com/vanderheijden86/hubtree/pkg/vscroll"
)

// selectHow says how a select combines with the current selection.
type selectHow int

const (
	selectPlain selectHow = iota
	selectToggle
	selectRange
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || (key.Matches(msg, m.keys.Quit) && !(m.mode == ModeSearch && isTextKey(msg))) {
		m.Stop()
		return m, tea.Quit
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Leave) {
			m.showHelp = false
		}
		return m, nil
	}
	if m.mode == ModeSearch {
		return m, m.handleSearchKey(msg)
	}
	return m, m.handleTreeKey(msg)
}

// isTextKey reports whether msg edits the search input.
func isTextKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace, tea.KeyBackspace, tea.KeyDelete,
		tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd,
		tea.KeyCtrlA, tea.KeyCtrlE, tea.KeyCtrlK, tea.KeyCtrlW:
		return true
	}
	return false
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	if isTextKey(msg) {
		before := m.input.Value()
		m.input, _ = m.input.Update(msg)
		if m.input.Value() == before {
			return nil
		}
		return m.setQuery(m.input.Value())
	}
	switch {
	case key.Matches(msg, m.keys.Leave):
		return m.leaveSearch()
	case key.Matches(msg, m.keys.Select):
		if p := m.cursorPath; p != "" {
			return m.promote(p)
		}
		return m.leaveSearch()
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		return m.moveCursor(-m.bodyHeight())
	case key.Matches(msg, m.keys.PageDown):
		return m.moveCursor(m.bodyHeight())
	case key.Matches(msg, m.keys.ToggleSubs):
		return m.toggleSubs(m.cursorPath)
	case key.Matches(msg, m.keys.ToggleHubs):
		return m.toggleHubs(m.cursorPath)
	case key.Matches(msg, m.keys.Reset):
		return m.reset()
	}
	return nil
}

func (m *Model) handleTreeKey(msg tea.KeyMsg) tea.Cmd {
	p := m.cursorPath
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.helpText = renderHelp(helpMarkdown(m.keys, m.cfg.MouseEnabled()), m.width)
	case key.Matches(msg, m.keys.Search):
		return m.enterSearch()
	case key.Matches(msg, m.keys.Leave):
		m.status = ""
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		return m.moveCursor(-m.bodyHeight())
	case key.Matches(msg, m.keys.PageDown):
		return m.moveCursor(m.bodyHeight())
	case key.Matches(msg, m.keys.Top):
		return m.moveCursor(-len(m.rows))
	case key.Matches(msg, m.keys.Bottom):
		return m.moveCursor(len(m.rows))
	case key.Matches(msg, m.keys.Left):
		return m.scrollHorizontally(-hscrollStep)
	case key.Matches(msg, m.keys.Right):
		return m.scrollHorizontally(hscrollStep)
	case key.Matches(msg, m.keys.ToggleSubs):
		return m.toggleSubs(p)
	case key.Matches(msg, m.keys.ToggleHubs):
		return m.toggleHubs(p)
	case key.Matches(msg, m.keys.Select):
		return m.selectPath(p, selectPlain)
	case key.Matches(msg, m.keys.MultiSelect):
		return m.selectPath(p, selectToggle)
	case key.Matches(msg, m.keys.RangeSelect):
		return m.selectPath(p, selectRange)
	case key.Matches(msg, m.keys.Confirm):
		return m.confirm(p)
	case key.Matches(msg, m.keys.Jump):
		return m.jumpNext(p)
	case key.Matches(msg, m.keys.Reset):
		return m.reset()
	case key.Matches(msg, m.keys.Menubar):
		return m.toggleMenubar()
	case key.Matches(msg, m.keys.ToggleMulti):
		return m.toggleMultiSelect()
	case key.Matches(msg, m.keys.ToggleBetween):
		return m.toggleSelectBetween()
	case key.Matches(msg, m.keys.Copy):
		if p != "" {
			return copyCmd(p)
		}
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.cfg.MouseEnabled() || m.showHelp {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.scrollBy(-3)
	case tea.MouseButtonWheelDown:
		return m.scrollBy(3)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
	default:
		return nil
	}

	idx, ok := m.rowAt(msg.Y - m.headerLines())
	if !ok {
		return nil
	}
	row := m.currentRows()[idx]
	kind, ok := partAt(clipParts(m.rowParts(row), m.hscroll, m.width), msg.X)
	if !ok {
		return nil
	}
	m.cursor, m.cursorPath = idx, row.InstancePath

	switch kind {
	case partIndent, partGlyph:
		return m.toggleSubs(row.InstancePath)
	case partIcon:
		return m.toggleHubs(row.InstancePath)
	case partWand:
		return m.reset()
	case partJump:
		return m.jumpNext(row.InstancePath)
	case partName:
		how := selectPlain
		if msg.Ctrl {
			how = selectToggle
		} else if msg.Shift {
			how = selectRange
		}
		return m.selectPath(row.InstancePath, how)
	case partCheck:
		return m.confirm(row.InstancePath)
	}
	return nil
}

// toggleSubs expands or collapses the subs of an instance. In search the
// search-mode states change instead.
func (m *Model) toggleSubs(p string) tea.Cmd {
	row, ok := m.rowFor(p)
	if !ok {
		return nil
	}
	entry := m.entries.Get(row.BasePath)
	if !entry.HasSubs() {
		return nil
	}
	if m.searching() {
		if row.IsRoot() {
			return nil
		}
		m.searchStates.ToggleSubs(p)
		m.beginAction()
		m.write(docSearchEntryStates, m.searchStates)
		m.runSearch()
		return m.flush()
	}
	m.states.ToggleSubs(p)
	m.rebuild(p, false)
	return m.persistStates()
}

// toggleHubs expands or collapses the hubs of an instance. The root's
// hubs never toggle.
func (m *Model) toggleHubs(p string) tea.Cmd {
	row, ok := m.rowFor(p)
	if !ok || row.IsRoot() {
		return nil
	}
	if !m.entries.Get(row.BasePath).HasHubs() {
		return nil
	}
	if m.searching() {
		m.searchStates.ToggleHubs(p)
		m.beginAction()
		m.write(docSearchEntryStates, m.searchStates)
		m.runSearch()
		return m.flush()
	}
	m.states.ToggleHubs(p)
	m.rebuild(p, true)
	return m.persistStates()
}

func (m *Model) persistStates() tea.Cmd {
	m.beginAction()
	m.write(docInstanceStates, m.states)
	m.write(docViewOrder, m.tracker.Snapshot())
	return tea.Batch(m.flush(), m.scrolled())
}

func (m *Model) rowFor(p string) (view.Row, bool) {
	if p == "" {
		return view.Row{}, false
	}
	rows := m.currentRows()
	i := view.IndexOf(rows, p)
	if i < 0 {
		return view.Row{}, false
	}
	return rows[i], true
}

// selectPath marks p as the last clicked row and updates the selection.
// In search, selecting opens the row in the default tree.
func (m *Model) selectPath(p string, how selectHow) tea.Cmd {
	if p == "" {
		return nil
	}
	if m.mode == ModeSearch {
		return m.promote(p)
	}
	if how == selectPlain {
		switch {
		case m.selectBetween:
			how = selectRange
		case m.multiSelect:
			how = selectToggle
		}
	}

	anchor := m.lastClicked
	m.lastClicked = p
	switch how {
	case selectToggle:
		m.selected = toggleIn(m.selected, p)
	case selectRange:
		m.selected = m.rangeSelection(anchor, p)
	default:
		m.selected = []string{p}
	}

	m.beginAction()
	m.write(docLastClicked, p)
	m.write(docSelected, nonNil(m.selected))
	return m.flush()
}

// rangeSelection selects every row from anchor to p in view order. With
// multi-select on, the range is added to the current selection.
func (m *Model) rangeSelection(anchor, p string) []string {
	i, j := view.IndexOf(m.rows, anchor), view.IndexOf(m.rows, p)
	if i < 0 || j < 0 {
		return []string{p}
	}
	if i > j {
		i, j = j, i
	}
	var out []string
	seen := make(map[string]bool)
	if m.multiSelect {
		for _, s := range m.selected {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	for _, r := range m.rows[i : j+1] {
		if !seen[r.InstancePath] {
			seen[r.InstancePath] = true
			out = append(out, r.InstancePath)
		}
	}
	return out
}

// confirm moves p from the selection to the confirmed set, or back.
func (m *Model) confirm(p string) tea.Cmd {
	if p == "" || m.mode == ModeSearch {
		return nil
	}
	switch {
	case contains(m.confirmed, p):
		m.confirmed = remove(m.confirmed, p)
		m.selected = appendUnique(m.selected, p)
	case contains(m.selected, p):
		m.selected = remove(m.selected, p)
		m.confirmed = appendUnique(m.confirmed, p)
	default:
		m.setStatus("select a row before confirming it")
		return nil
	}
	m.beginAction()
	m.write(docSelected, nonNil(m.selected))
	m.write(docConfirmed, nonNil(m.confirmed))
	return m.flush()
}

// jumpNext moves to the next occurrence of p's entry, keeping its place
// on screen, and highlights it.
func (m *Model) jumpNext(p string) tea.Cmd {
	if m.hubs != config.HubsDefault {
		return nil
	}
	row, ok := m.rowFor(p)
	if !ok {
		return nil
	}
	target, ok := m.activeTracker().Next(row.BasePath, p)
	if !ok {
		m.setStatus(fmt.Sprintf("%s is shown once", row.BasePath))
		return nil
	}
	rows := m.currentRows()
	src, dst := view.IndexOf(rows, p), view.IndexOf(rows, target)
	if dst < 0 {
		return nil
	}
	m.cursor, m.cursorPath = dst, target
	m.flash = target
	m.flashSeq++
	flash := flashCmd(m.flashSeq, m.cfg.HighlightDuration())

	if m.searching() {
		m.searchTop = m.clampSearchTop(vscroll.KeepRelative(src, dst, m.searchTop, m.bodyHeight(), 1))
		return flash
	}
	rh := m.win.Config().RowHeight
	m.win.ScrollTo(vscroll.KeepRelative(src, dst, m.win.ScrollTop(), m.win.Viewport(), rh))
	return tea.Batch(flash, m.scrolled())
}

// reset restores the root-only view and clears selection and scroll. In
// search it clears the search-mode expansions instead.
func (m *Model) reset() tea.Cmd {
	m.beginAction()
	if m.mode == ModeSearch {
		m.searchStates = make(view.StateMap)
		m.write(docSearchEntryStates, m.searchStates)
		m.runSearch()
		return m.flush()
	}
	m.states = view.ResetStates()
	m.selected, m.confirmed = nil, nil
	m.hscroll = 0
	m.win.ClearSpacer()
	m.rebuild("", false)
	m.win.Rebuild(len(m.rows), 0)
	m.cursor, m.cursorPath = 0, ""
	m.syncCursor()
	m.persistedTop, m.persistedLeft = 0, 0

	m.write(docVerticalScroll, 0)
	m.write(docHorizontalScroll, 0)
	m.write(docSelected, []string{})
	m.write(docConfirmed, []string{})
	m.write(docInstanceStates, m.states)
	m.write(docViewOrder, m.tracker.Snapshot())
	return tea.Batch(m.flush(), m.startFill())
}

func (m *Model) enterSearch() tea.Cmd {
	if m.mode == ModeSearch {
		return nil
	}
	m.beginAction()
	m.setMode(ModeSearch)
	m.write(docCurrentMode, m.mode)
	m.runSearch()
	return m.flush()
}

func (m *Model) leaveSearch() tea.Cmd {
	if m.mode != ModeSearch {
		return nil
	}
	m.beginAction()
	m.query = ""
	m.input.Reset()
	m.runSearch()
	m.write(docSearchQuery, "")
	m.setMode(m.returnMode())
	m.write(docCurrentMode, m.mode)
	return tea.Batch(m.flush(), m.startFill())
}

// setQuery runs a search for q and persists it.
func (m *Model) setQuery(q string) tea.Cmd {
	q = strings.TrimSpace(q)
	if q == m.query {
		return nil
	}
	m.query = q
	m.cursor, m.cursorPath, m.searchTop = 0, "", 0
	m.runSearch()
	m.syncCursor()
	m.beginAction()
	m.write(docSearchQuery, q)
	return tea.Batch(m.flush(), m.startFill())
}

// promote opens a search row in the default tree: its ancestors are
// expanded, it becomes the selection and search ends.
func (m *Model) promote(p string) tea.Cmd {
	view.Promote(m.entries, m.states, p)
	m.selected = []string{p}
	m.query = ""
	m.input.Reset()
	m.runSearch()

	m.beginAction()
	m.write(docSelected, m.selected)
	m.write(docInstanceStates, m.states)
	m.write(docSearchQuery, "")
	m.setMode(m.returnMode())
	m.write(docCurrentMode, m.mode)

	m.rebuild("", false)
	m.write(docViewOrder, m.tracker.Snapshot())
	if i := view.IndexOf(m.rows, p); i >= 0 {
		m.cursor, m.cursorPath = i, p
		rh := m.win.Config().RowHeight
		m.win.ScrollTo(i*rh - m.win.Viewport()/2)
	}
	return tea.Batch(m.flush(), m.scrolled())
}

func (m *Model) toggleMenubar() tea.Cmd {
	next := ModeMenubar
	if m.mode == ModeMenubar {
		next = ModeDefault
	}
	m.beginAction()
	m.setMode(next)
	m.write(docCurrentMode, m.mode)
	return tea.Batch(m.flush(), m.startFill())
}

func (m *Model) toggleMultiSelect() tea.Cmd {
	m.multiSelect = !m.multiSelect
	m.beginAction()
	m.write(docMultiSelect, m.multiSelect)
	return m.flush()
}

func (m *Model) toggleSelectBetween() tea.Cmd {
	m.selectBetween = !m.selectBetween
	m.beginAction()
	m.write(docSelectBetween, m.selectBetween)
	return m.flush()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}

func toggleIn(list []string, s string) []string {
	if contains(list, s) {
		return remove(list, s)
	}
	return append(append([]string(nil), list...), s)
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
