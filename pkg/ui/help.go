package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// helpMarkdown describes the bindings and the row layout as markdown.
func helpMarkdown(km KeyMap, mouse bool) string {
	var b strings.Builder
	b.WriteString("# hubtree\n\n")
	b.WriteString("Each row is `indent prefix icon [^] name`. ")
	b.WriteString("`◆` marks an entry with hubs, `^` one shown more than once.\n\n")
	for _, g := range km.helpGroups() {
		fmt.Fprintf(&b, "## %s\n\n", g.title)
		b.WriteString("| key | action |\n|---|---|\n")
		for _, kb := range g.bindings {
			h := kb.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	if mouse {
		b.WriteString("## Mouse\n\n")
		b.WriteString("Click the indent or prefix to toggle subs, the icon to toggle hubs, ")
		b.WriteString("`^` to jump, the name to select and `✦` to reset.\n")
	}
	return b.String()
}

// renderHelp renders markdown for the given width, falling back to the
// raw text when glamour fails.
func renderHelp(markdown string, width int) string {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n ")
}
