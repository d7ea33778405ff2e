package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/metrics"
	"github.com/vanderheijden86/hubtree/pkg/view"
)

// partKind says what a click on a part of a row does.
type partKind int

const (
	partText partKind = iota
	partIndent
	partGlyph
	partIcon
	partWand
	partJump
	partName
	partCheck
)

type part struct {
	kind  partKind
	text  string
	style lipgloss.Style
}

// View implements tea.Model.
func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	lines := make([]string, 0, m.height)
	if m.mode != ModeDefault {
		lines = append(lines, m.renderMenubar())
	}
	if m.mode == ModeSearch {
		lines = append(lines, m.input.View())
	}
	lines = append(lines, m.renderBody()...)
	lines = append(lines, m.renderFooter())
	return strings.Join(lines, "\n")
}

// headerLines is the number of lines above the rows.
func (m *Model) headerLines() int {
	switch m.mode {
	case ModeSearch:
		return 2
	case ModeMenubar:
		return 1
	}
	return 0
}

// bodyHeight is the number of lines available to rows.
func (m *Model) bodyHeight() int {
	return max(1, m.height-m.headerLines()-1)
}

func (m *Model) renderBody() []string {
	h := m.bodyHeight()
	lines := make([]string, 0, h)
	switch {
	case m.entries == nil || !m.entries.HasRoot():
		lines = append(lines, m.theme.Footer.Render("No entries"))
	case m.searching() && len(m.search.Rows) == 0:
		lines = append(lines, m.theme.Footer.Render(fmt.Sprintf("No results for %q", m.query)))
	case m.searching():
		for i := m.searchTop; i < len(m.search.Rows) && len(lines) < h; i++ {
			lines = append(lines, m.renderRow(i, m.search.Rows[i]))
		}
	default:
		rh := m.win.Config().RowHeight
		top := m.win.ScrollTop()
		for y := 0; y < h; y++ {
			off := top + y
			i := off / rh
			// Rows below the window and pad lines of tall rows stay blank,
			// as does anything under a sentinel until the fill reaches it.
			if off%rh != 0 || i >= len(m.rows) || !m.win.IsRendered(i) {
				lines = append(lines, "")
				continue
			}
			lines = append(lines, m.renderRow(i, m.rows[i]))
		}
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return lines
}

// rowAt maps a body line to a row index.
func (m *Model) rowAt(y int) (int, bool) {
	if y < 0 || y >= m.bodyHeight() {
		return 0, false
	}
	if m.searching() {
		i := m.searchTop + y
		return i, i < len(m.search.Rows)
	}
	rh := m.win.Config().RowHeight
	off := m.win.ScrollTop() + y
	i := off / rh
	if off%rh != 0 || i >= len(m.rows) || !m.win.IsRendered(i) {
		return 0, false
	}
	return i, true
}

func (m *Model) renderRow(i int, row view.Row) string {
	parts := clipParts(m.rowParts(row), m.hscroll, m.width)
	var rowStyle *lipgloss.Style
	switch {
	case row.InstancePath == m.flash:
		rowStyle = &m.theme.Flash
	case i == m.cursor:
		rowStyle = &m.theme.Cursor
	}
	return renderParts(parts, rowStyle, m.width)
}

// rowParts lays a row out as clickable parts.
func (m *Model) rowParts(row view.Row) []part {
	t := m.theme
	dup := m.hubs == config.HubsDefault && m.activeTracker().HasDuplicates(row.BasePath)
	ln := view.LineOf(row, m.entries, m.stateOf(row.InstancePath), dup)
	if ln.Missing {
		return []part{{kind: partName, text: ln.String(), style: t.Missing}}
	}

	var parts []part
	if ln.Root {
		parts = append(parts,
			part{partWand, ln.Icon, t.HubIcon},
			part{partGlyph, ln.Glyph.Art(), t.Pipe},
			part{partText, " ", t.Base},
		)
	} else {
		iconStyle := t.Icon
		if ln.HasHubs {
			iconStyle = t.HubIcon
		}
		parts = append(parts,
			part{partIndent, ln.Indent, t.Pipe},
			part{partGlyph, ln.Glyph.Art(), t.Pipe},
			part{partIcon, ln.Icon, iconStyle},
			part{partText, " ", t.Base},
		)
		if ln.Jump {
			parts = append(parts, part{partJump, view.JumpArt, t.Jump}, part{partText, " ", t.Base})
		}
	}
	parts = append(parts, m.nameParts(row, ln.Name)...)

	selected := contains(m.selected, row.InstancePath)
	confirmed := contains(m.confirmed, row.InstancePath)
	if (selected || confirmed) && m.mode != ModeSearch {
		box := "[ ]"
		if confirmed {
			box = "[x]"
		}
		parts = append(parts, part{partText, " ", t.Base}, part{partCheck, box, t.Confirm})
	}
	if m.searching() && !row.IsInOriginalView {
		parts = append(parts, part{partText, " +", t.NewEntry})
	}
	return parts
}

// nameParts splits a name into plain and matched spans.
func (m *Model) nameParts(row view.Row, name string) []part {
	t := m.theme
	style := t.Name
	switch {
	case contains(m.confirmed, row.InstancePath):
		style = t.Confirm
	case contains(m.selected, row.InstancePath):
		style = t.SelectedRow
	case m.searching() && !row.IsInOriginalView:
		style = t.NewEntry
	}
	if row.InstancePath == m.lastClicked {
		style = style.Underline(true)
	}
	if !m.searching() || !row.IsDirectMatch {
		return []part{{partName, name, style}}
	}

	var parts []part
	at := 0
	for _, sp := range view.HighlightSpans(name, m.query) {
		if sp.Start > at {
			parts = append(parts, part{partName, name[at:sp.Start], style})
		}
		parts = append(parts, part{partName, name[sp.Start:sp.End], t.MatchText})
		at = sp.End
	}
	if at < len(name) {
		parts = append(parts, part{partName, name[at:], style})
	}
	return parts
}

// clipParts drops the first skip cells and keeps at most width cells.
// A width of zero or less keeps everything after skip.
func clipParts(parts []part, skip, width int) []part {
	limit := skip + width
	if width <= 0 {
		limit = int(^uint(0) >> 1)
	}
	out := make([]part, 0, len(parts))
	col := 0
	for _, p := range parts {
		if col >= limit {
			break
		}
		var b strings.Builder
		for _, r := range p.text {
			w := runewidth.RuneWidth(r)
			if col < skip {
				col += w
				continue
			}
			if col+w > limit {
				col = limit
				break
			}
			b.WriteRune(r)
			col += w
		}
		if b.Len() > 0 {
			out = append(out, part{p.kind, b.String(), p.style})
		}
	}
	return out
}

// partAt returns the kind of the part covering screen column x.
func partAt(parts []part, x int) (partKind, bool) {
	col := 0
	for _, p := range parts {
		w := runewidth.StringWidth(p.text)
		if x >= col && x < col+w {
			return p.kind, true
		}
		col += w
	}
	return partText, false
}

// renderParts styles parts; a row style fills the whole line.
func renderParts(parts []part, rowStyle *lipgloss.Style, width int) string {
	var b strings.Builder
	used := 0
	for _, p := range parts {
		st := p.style
		if rowStyle != nil {
			st = st.Inherit(*rowStyle)
		}
		b.WriteString(st.Render(p.text))
		used += runewidth.StringWidth(p.text)
	}
	if rowStyle != nil && width > used {
		b.WriteString(rowStyle.Render(strings.Repeat(" ", width-used)))
	}
	return b.String()
}

func (m *Model) renderMenubar() string {
	t := m.theme
	flag := func(label string, on bool, k string) string {
		if on {
			return t.MenuOn.Render(label+": on") + t.MenuOff.Render(" ("+k+")")
		}
		return t.MenuOff.Render(label + ": off (" + k + ")")
	}
	items := []string{
		t.Header.Render("hubtree"),
		t.MenuOff.Render("search (" + m.keys.Search.Help().Key + ")"),
		flag("multi-select", m.multiSelect, m.keys.ToggleMulti.Help().Key),
		flag("select-between", m.selectBetween, m.keys.ToggleBetween.Help().Key),
		t.MenuOff.Render("hubs: " + m.hubs),
	}
	bar := strings.Join(items, "  ")
	if m.width > 0 && lipgloss.Width(bar) > m.width {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(bar)
	}
	return bar
}

func (m *Model) renderFooter() string {
	t := m.theme
	if m.status != "" {
		text := runewidth.Truncate(m.status, max(1, m.width), "…")
		if m.statusErr {
			return t.StatusError.Render(text)
		}
		return t.Footer.Render(text)
	}
	rows := m.currentRows()
	pos := "0/0"
	if len(rows) > 0 {
		pos = fmt.Sprintf("%d/%d", m.cursor+1, len(rows))
	}
	text := fmt.Sprintf("%s  %s  %s  ?: help", pos, m.mode, m.cursorPath)
	return t.Footer.Render(runewidth.Truncate(text, max(1, m.width), "…"))
}

func (m *Model) renderHelpOverlay() string {
	lines := strings.Split(m.helpText, "\n")
	if h := max(1, m.height-1); len(lines) > h {
		lines = lines[:h]
	}
	lines = append(lines, m.theme.Footer.Render("press ? or esc to close"))
	return strings.Join(lines, "\n")
}
