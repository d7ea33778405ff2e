package ui

import (
	"log"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	customPropRe = regexp.MustCompile(`--([A-Za-z0-9_-]+)\s*:\s*([^;}]+)`)
	hexColorRe   = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)
	cssCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// ParseCustomProperties returns the `--name: value` declarations of a
// style sheet. Later declarations win.
func ParseCustomProperties(css string) map[string]string {
	css = cssCommentRe.ReplaceAllString(css, "")
	props := make(map[string]string)
	for _, m := range customPropRe.FindAllStringSubmatch(css, -1) {
		props[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}
	return props
}

// WithProperties returns a copy of t with the named colors replaced.
// Unknown names are ignored; values that are not hex colors are logged and
// skipped.
func (t Theme) WithProperties(props map[string]string) Theme {
	for name, value := range props {
		slot := t.colorSlot(name)
		if slot == nil {
			continue
		}
		if !hexColorRe.MatchString(value) {
			log.Printf("warning: style property --%s: %q is not a hex color", name, value)
			continue
		}
		*slot = ThemeFg(value)
	}
	return t.restyle()
}

func (t *Theme) colorSlot(name string) *lipgloss.TerminalColor {
	switch name {
	case "primary":
		return &t.Primary
	case "secondary":
		return &t.Secondary
	case "muted":
		return &t.Muted
	case "highlight":
		return &t.Highlight
	case "match":
		return &t.Match
	case "selected":
		return &t.Selected
	case "confirmed":
		return &t.Confirmed
	case "error":
		return &t.Error
	}
	return nil
}
