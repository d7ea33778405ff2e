package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile, computed once at
// package init.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so low-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and ANSI
// white for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds the explorer's colors and the styles derived from them.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors, each overridable from a style document.
	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Muted     lipgloss.TerminalColor
	Highlight lipgloss.TerminalColor
	Match     lipgloss.TerminalColor
	Selected  lipgloss.TerminalColor
	Confirmed lipgloss.TerminalColor
	Error     lipgloss.TerminalColor

	Base        lipgloss.Style
	Pipe        lipgloss.Style // indent and prefix glyphs
	Icon        lipgloss.Style
	HubIcon     lipgloss.Style
	Jump        lipgloss.Style
	Name        lipgloss.Style
	MatchText   lipgloss.Style // matched part of a name
	NewEntry    lipgloss.Style // search rows not in the default view
	Missing     lipgloss.Style
	Cursor      lipgloss.Style
	SelectedRow lipgloss.Style
	Confirm     lipgloss.Style
	LastClicked lipgloss.Style
	Flash       lipgloss.Style // jump target
	Header      lipgloss.Style
	MenuOn      lipgloss.Style
	MenuOff     lipgloss.Style
	Footer      lipgloss.Style
	StatusError lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Muted:     lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Match:     lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Selected:  lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},
		Confirmed: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Error:     lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}
	return t.restyle()
}

// TestTheme returns a theme for tests, rendering without color.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}

// restyle derives every style from the current colors. Styles are built
// once per theme change instead of per frame.
func (t Theme) restyle() Theme {
	r := t.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
		t.Renderer = r
	}
	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})
	t.Pipe = r.NewStyle().Foreground(t.Secondary)
	t.Icon = r.NewStyle().Foreground(t.Muted)
	t.HubIcon = r.NewStyle().Foreground(t.Primary)
	t.Jump = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Name = r.NewStyle()
	t.MatchText = r.NewStyle().Foreground(t.Match).Bold(true).Underline(true)
	t.NewEntry = r.NewStyle().Foreground(t.Match)
	t.Missing = r.NewStyle().Foreground(t.Error).Italic(true)
	t.Cursor = r.NewStyle().Background(t.Highlight)
	t.SelectedRow = r.NewStyle().Foreground(t.Selected).Bold(true)
	t.Confirm = r.NewStyle().Foreground(t.Confirmed)
	t.LastClicked = r.NewStyle().Underline(true)
	t.Flash = r.NewStyle().Background(t.Primary).Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"})
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.MenuOn = r.NewStyle().Foreground(t.Confirmed).Bold(true)
	t.MenuOff = r.NewStyle().Foreground(t.Muted)
	t.Footer = r.NewStyle().Foreground(t.Muted)
	t.StatusError = r.NewStyle().Foreground(t.Error).Bold(true)
	return t
}
