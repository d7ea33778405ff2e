package view

import (
	"strings"

	"github.com/vanderheijden86/hubtree/pkg/graph"
)

// Cell drawings shared by every renderer.
const (
	PipeArt    = "│ "
	BlankArt   = "  "
	WandArt    = "✦"
	HubIcon    = "◆"
	PlainIcon  = "◇"
	JumpArt    = "^"
	MissingArt = "!"
)

// Line is a row broken into the parts a renderer draws, left to right.
type Line struct {
	Indent string
	Glyph  Glyph
	Icon   string
	Jump   bool
	Name   string

	Root    bool
	Missing bool
	// HasSubs and HasHubs tell which parts toggle something.
	HasSubs bool
	HasHubs bool
}

// LineOf lays out row. state is the row's expansion state in whichever
// map the view was built from; dup marks a base path shown elsewhere too.
func LineOf(row Row, entries graph.Entries, state InstanceState, dup bool) Line {
	entry := entries.Get(row.BasePath)
	if entry == nil {
		return Line{Name: "missing entry " + row.BasePath, Missing: true, Icon: MissingArt}
	}
	l := Line{
		Name:    entry.DisplayName(row.BasePath),
		HasSubs: entry.HasSubs(),
		HasHubs: entry.HasHubs(),
	}
	if row.IsRoot() {
		l.Root = true
		l.Glyph = RootGlyph(state.ExpandedSubs)
		l.Icon = WandArt
		l.Name = graph.RootPath
		return l
	}

	var b strings.Builder
	for _, p := range row.PipeTrail {
		if p {
			b.WriteString(PipeArt)
		} else {
			b.WriteString(BlankArt)
		}
	}
	l.Indent = b.String()
	l.Glyph = Prefix(PrefixInput{
		IsLastSub:    row.IsLastSub,
		HasSubs:      l.HasSubs,
		ExpandedSubs: state.ExpandedSubs,
		ExpandedHubs: state.ExpandedHubs,
		IsHub:        row.IsHub,
		IsHubOnTop:   row.IsHubOnTop,
	})
	l.Icon = PlainIcon
	if l.HasHubs {
		l.Icon = HubIcon
	}
	l.Jump = dup
	return l
}

// String draws the line as plain text.
func (l Line) String() string {
	if l.Missing {
		return l.Icon + " " + l.Name
	}
	if l.Root {
		return l.Icon + l.Glyph.Art() + " " + l.Name
	}
	var b strings.Builder
	b.WriteString(l.Indent)
	b.WriteString(l.Glyph.Art())
	b.WriteString(l.Icon)
	b.WriteByte(' ')
	if l.Jump {
		b.WriteString(JumpArt)
		b.WriteByte(' ')
	}
	b.WriteString(l.Name)
	return b.String()
}
