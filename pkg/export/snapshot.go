package export

import (
	"fmt"
	"image/color"
	"io"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/hubtree/pkg/view"
)

// --- layout ------------------------------------------------------------------

const (
	padding    = 24.0
	header     = 56.0
	cellW      = 14.0
	rowH       = 20.0
	charW      = 7.0 // basicfont.Face7x13
	minWidth   = 320
	iconRadius = 5.0
)

// segment is a stroke in cell units: x spans cells, y runs 0 (top) to 1
// (bottom) within the row.
type segment struct {
	x1, y1, x2, y2 float64
}

type join int

const (
	joinTop join = iota
	joinMiddle
	joinBottom
)

type tail int

const (
	tailCross tail = iota
	tailTeeDown
	tailTeeUp
	tailLine
	tailLightTeeUp
	tailLightLine
)

var glyphParts = map[view.Glyph]struct {
	join join
	tail tail
}{
	view.TopCross:         {joinTop, tailCross},
	view.TopTeeDown:       {joinTop, tailTeeDown},
	view.TopTeeUp:         {joinTop, tailTeeUp},
	view.TopLine:          {joinTop, tailLine},
	view.MiddleCross:      {joinMiddle, tailCross},
	view.MiddleTeeDown:    {joinMiddle, tailTeeDown},
	view.MiddleTeeUp:      {joinMiddle, tailTeeUp},
	view.MiddleLine:       {joinMiddle, tailLine},
	view.MiddleLightTeeUp: {joinMiddle, tailLightTeeUp},
	view.MiddleLightLine:  {joinMiddle, tailLightLine},
	view.BottomCross:      {joinBottom, tailCross},
	view.BottomTeeDown:    {joinBottom, tailTeeDown},
	view.BottomTeeUp:      {joinBottom, tailTeeUp},
	view.BottomLine:       {joinBottom, tailLine},
	view.BottomLightTeeUp: {joinBottom, tailLightTeeUp},
	view.BottomLightLine:  {joinBottom, tailLightLine},
}

// glyphSegments draws g starting at cell x0. Connector glyphs take two
// cells, root glyphs one.
func glyphSegments(g view.Glyph, x0 float64) []segment {
	switch g {
	case view.RootTeeDown:
		return []segment{{x0, .5, x0 + 1, .5}, {x0 + .5, .5, x0 + .5, 1}}
	case view.RootLine:
		return []segment{{x0, .5, x0 + 1, .5}}
	}
	parts, ok := glyphParts[g]
	if !ok {
		parts = glyphParts[view.MiddleLine]
	}

	mid := x0 + .5
	segs := []segment{{mid, .5, x0 + 1, .5}}
	switch parts.join {
	case joinTop:
		segs = append(segs, segment{mid, .5, mid, 1})
	case joinMiddle:
		segs = append(segs, segment{mid, 0, mid, 1})
	case joinBottom:
		segs = append(segs, segment{mid, 0, mid, .5})
	}

	x1 := x0 + 1
	mid = x1 + .5
	switch parts.tail {
	case tailCross:
		segs = append(segs, segment{x1, .5, x1 + 1, .5}, segment{mid, 0, mid, 1})
	case tailTeeDown:
		segs = append(segs, segment{x1, .5, x1 + 1, .5}, segment{mid, .5, mid, 1})
	case tailTeeUp:
		segs = append(segs, segment{x1, .5, x1 + 1, .5}, segment{mid, 0, mid, .5})
	case tailLine:
		segs = append(segs, segment{x1, .5, x1 + 1, .5})
	case tailLightTeeUp:
		segs = append(segs, segment{x1, .5, mid, .5}, segment{mid, 0, mid, .5})
	case tailLightLine:
		segs = append(segs, segment{x1, .5, mid, .5})
	}
	return segs
}

type drawnRow struct {
	line  view.Line
	row   view.Row
	segs  []segment
	iconX float64 // cell of the icon
	textX float64 // pixel x where the label starts
	y     float64 // pixel y of the row top
	label string
}

type layoutResult struct {
	rows   []drawnRow
	width  int
	height int
	title  string
	hubs   int
}

func buildLayout(o Options) layoutResult {
	lines := o.lines()
	res := layoutResult{title: o.Title}
	if res.title == "" {
		res.title = "hubtree"
	}
	width := float64(minWidth)
	for i, l := range lines {
		r := o.Rows[i]
		d := drawnRow{line: l, row: r, y: padding + header + float64(i)*rowH}

		var cell float64
		if !l.Root && !l.Missing {
			for c, p := range r.PipeTrail {
				if p {
					d.segs = append(d.segs, segment{float64(c) + .5, 0, float64(c) + .5, 1})
				}
			}
			cell = float64(len(r.PipeTrail))
		}
		if l.Root {
			d.iconX = 0
			d.segs = append(d.segs, glyphSegments(l.Glyph, 1)...)
			cell = 2
		} else if !l.Missing {
			d.segs = append(d.segs, glyphSegments(l.Glyph, cell)...)
			d.iconX = cell + 2
			cell += 3
		}
		if r.IsHub {
			res.hubs++
		}

		d.label = l.Name
		if l.Jump {
			d.label = view.JumpArt + " " + l.Name
		}
		d.textX = padding + cell*cellW + 4
		res.rows = append(res.rows, d)

		if w := d.textX + float64(len(d.label))*charW + padding; w > width {
			width = w
		}
	}
	res.width = int(width)
	res.height = int(padding*2 + header + float64(len(lines))*rowH)
	return res
}

// --- rendering ---------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorPipe     = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorHub      = color.RGBA{0xbd, 0x93, 0xf9, 0xff}
	colorPlain    = color.RGBA{0x8b, 0xe9, 0xfd, 0xff}
	colorMatch    = color.RGBA{0xff, 0xb8, 0x6c, 0xff}
	colorError    = color.RGBA{0xff, 0x55, 0x55, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

func labelColor(d drawnRow) color.RGBA {
	switch {
	case d.line.Missing:
		return colorError
	case d.row.IsDirectMatch:
		return colorMatch
	case d.row.IsHub:
		return colorSubtle
	}
	return colorText
}

func summary(l layoutResult) string {
	return fmt.Sprintf("rows: %d  hubs: %d", len(l.rows), l.hubs)
}

func renderPNG(o Options) error {
	layout := buildLayout(o)
	dc := gg.NewContext(layout.width, layout.height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(12, 12, float64(layout.width)-24, header-8, 8)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.title, 24, 28, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(summary(layout), 24, 46, 0, 0.5)

	for _, d := range layout.rows {
		dc.SetColor(colorPipe)
		dc.SetLineWidth(1.5)
		for _, s := range d.segs {
			dc.DrawLine(padding+s.x1*cellW, d.y+s.y1*rowH, padding+s.x2*cellW, d.y+s.y2*rowH)
			dc.Stroke()
		}
		if !d.line.Missing {
			drawIcon(dc, d)
		}
		dc.SetColor(labelColor(d))
		dc.DrawStringAnchored(d.label, d.textX, d.y+rowH/2, 0, 0.5)
	}
	return dc.SavePNG(o.Path)
}

func drawIcon(dc *gg.Context, d drawnRow) {
	cx := padding + (d.iconX+.5)*cellW
	cy := d.y + rowH/2
	dc.NewSubPath()
	dc.MoveTo(cx, cy-iconRadius)
	dc.LineTo(cx+iconRadius, cy)
	dc.LineTo(cx, cy+iconRadius)
	dc.LineTo(cx-iconRadius, cy)
	dc.ClosePath()
	if d.line.Root || d.line.HasHubs {
		dc.SetColor(colorHub)
		dc.Fill()
		return
	}
	dc.SetColor(colorPlain)
	dc.SetLineWidth(1.2)
	dc.Stroke()
}

// WriteSVG writes the SVG drawing to w.
func WriteSVG(w io.Writer, o Options) error {
	layout := buildLayout(o)
	canvas := svg.New(w)
	canvas.Start(layout.width, layout.height)
	canvas.Rect(0, 0, layout.width, layout.height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(12, 12, layout.width-24, int(header-8), 8, 8, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(24, 32, layout.title, fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(24, 50, summary(layout), fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	pipeStyle := fmt.Sprintf("stroke:%s;stroke-width:1.5", css(colorPipe))
	for _, d := range layout.rows {
		canvas.Gid(d.row.InstancePath)
		for _, s := range d.segs {
			canvas.Line(
				int(padding+s.x1*cellW), int(d.y+s.y1*rowH),
				int(padding+s.x2*cellW), int(d.y+s.y2*rowH),
				pipeStyle)
		}
		if !d.line.Missing {
			cx := int(padding + (d.iconX+.5)*cellW)
			cy := int(d.y + rowH/2)
			r := int(iconRadius)
			style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.2", css(colorPlain))
			if d.line.Root || d.line.HasHubs {
				style = fmt.Sprintf("fill:%s", css(colorHub))
			}
			canvas.Polygon([]int{cx, cx + r, cx, cx - r}, []int{cy - r, cy, cy + r, cy}, style)
		}
		canvas.Text(int(d.textX), int(d.y+rowH/2+4), d.label,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(labelColor(d))))
		canvas.Gend()
	}

	canvas.End()
	return nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
