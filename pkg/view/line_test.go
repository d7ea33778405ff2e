package view

import (
	"strings"
	"testing"
)

func TestLineOf(t *testing.T) {
	entries := hubEntries()
	states := ResetStates()
	states.GetOrCreate("|/|/a").ExpandedHubs = true
	states.GetOrCreate("|/|/b").ExpandedHubs = true
	rows := Build(entries, states, BuildOptions{})

	tr := NewTracker()
	tr.Rebuild(rows)

	var lines []string
	for _, r := range rows {
		lines = append(lines, LineOf(r, entries, states.Peek(r.InstancePath), tr.HasDuplicates(r.BasePath)).String())
	}
	want := []string{
		"│ ┌─◆ ^ h",
		"├┴◆ a",
		"│ ┌─◆ ^ h",
		"└┘◆ b",
	}
	got := lines[1:]
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("lines:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if lines[0] != "✦┬ /" {
		t.Errorf("root line = %q", lines[0])
	}
}

func TestLineOfMissingEntry(t *testing.T) {
	l := LineOf(Row{BasePath: "/gone", InstancePath: "|/|/gone"}, hubEntries(), InstanceState{}, false)
	if !l.Missing || !strings.Contains(l.String(), "/gone") {
		t.Errorf("line = %+v", l)
	}
}
