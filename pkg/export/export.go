// Package export renders a built view to text, SVG or PNG, outside the
// terminal UI. Every format draws the same connector glyphs the explorer
// shows.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/hubtree/pkg/graph"
	"github.com/vanderheijden86/hubtree/pkg/view"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
)

// Options describes what to export.
type Options struct {
	Path   string // output path; "-" or empty writes text to stdout
	Format string // text, svg or png; inferred from Path when empty
	Title  string

	Rows    []view.Row
	Entries graph.Entries
	// States is the map the rows were built from.
	States view.StateMap
	// Tracker marks duplicates with the jump control when set.
	Tracker *view.Tracker
	// Width truncates text lines to this many cells; 0 keeps them whole.
	Width int
}

// FormatFor resolves the format from an explicit name or the path's
// extension. Paths without a known extension are text.
func FormatFor(format, path string) (Format, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if f == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			return FormatSVG, nil
		case ".png":
			return FormatPNG, nil
		}
		return FormatText, nil
	}
	switch Format(f) {
	case FormatText, FormatSVG, FormatPNG:
		return Format(f), nil
	case "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported format %q (want text, svg or png)", format)
}

// lines lays out every row.
func (o Options) lines() []view.Line {
	out := make([]view.Line, len(o.Rows))
	for i, r := range o.Rows {
		dup := o.Tracker != nil && o.Tracker.HasDuplicates(r.BasePath)
		out[i] = view.LineOf(r, o.Entries, o.States.Peek(r.InstancePath), dup)
	}
	return out
}

// Lines returns the text drawing of the rows.
func Lines(o Options) []string {
	ls := o.lines()
	out := make([]string, len(ls))
	for i, l := range ls {
		s := l.String()
		if o.Width > 0 && runewidth.StringWidth(s) > o.Width {
			s = runewidth.Truncate(s, o.Width, "…")
		}
		out[i] = s
	}
	return out
}

// WriteText writes the text drawing to w, one row per line.
func WriteText(w io.Writer, o Options) error {
	for _, line := range Lines(o) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the export to o.Path in the resolved format.
func Save(o Options) error {
	format, err := FormatFor(o.Format, o.Path)
	if err != nil {
		return err
	}
	if o.Path == "" || o.Path == "-" {
		if format != FormatText {
			return fmt.Errorf("%s output needs a file path", format)
		}
		return WriteText(os.Stdout, o)
	}
	if err := os.MkdirAll(filepath.Dir(o.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	switch format {
	case FormatPNG:
		return renderPNG(o)
	case FormatSVG:
		f, err := os.Create(o.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		return WriteSVG(f, o)
	default:
		f, err := os.Create(o.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		return WriteText(f, o)
	}
}
