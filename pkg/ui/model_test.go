package ui

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/metrics"
	"github.com/vanderheijden86/hubtree/pkg/testutil"
	"github.com/vanderheijden86/hubtree/pkg/view"
	"github.com/vanderheijden86/hubtree/pkg/vscroll"
)

func readDoc(t *testing.T, d drive.Drive, path string, v any) {
	t.Helper()
	raw, err := d.Get(context.Background(), path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
}

func batchOf(docs map[string]string, origin drive.Origin) BatchMsg {
	paths := make([]string, 0, len(docs))
	raw := make(map[string][]byte, len(docs))
	for p, v := range docs {
		paths = append(paths, p)
		raw[p] = []byte(v)
	}
	return BatchMsg{Batch: drive.Group(paths, origin), Docs: raw}
}

func TestLoadBuildsView(t *testing.T) {
	m, _ := newTestModel(t, testEntries)

	if got := view.InstancePaths(m.Rows()); !reflect.DeepEqual(got, []string{"|/", "|/|/a", "|/|/b"}) {
		t.Fatalf("rows = %v", got)
	}
	if m.Mode() != ModeMenubar {
		t.Errorf("mode = %q, want menubar", m.Mode())
	}
	out := plainView(m)
	for _, want := range []string{"hubtree", "alpha", "beta", "✦"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Split(out, "\n"); len(lines) != 20 {
		t.Errorf("view has %d lines, want 20", len(lines))
	}
}

func TestToggleSubsPersists(t *testing.T) {
	m, d := newTestModel(t, testEntries)
	m = press(t, m, "j", "l")

	if got := view.InstancePaths(m.Rows()); !reflect.DeepEqual(got, []string{"|/", "|/|/a", "|/|/a|/a/x", "|/|/b"}) {
		t.Fatalf("rows = %v", got)
	}
	var states view.StateMap
	readDoc(t, d, docInstanceStates, &states)
	if !states.Peek("|/|/a").ExpandedSubs {
		t.Errorf("stored states = %v", states)
	}

	m = press(t, m, "l")
	if len(m.Rows()) != 3 {
		t.Errorf("collapse left %d rows", len(m.Rows()))
	}
}

func TestToggleHubsAndJump(t *testing.T) {
	m, _ := newTestModel(t, testEntries)

	m = press(t, m, "j", "h")
	if got := view.InstancePaths(m.Rows()); !reflect.DeepEqual(got, []string{"|/", "|/|/a|/h", "|/|/a", "|/|/b"}) {
		t.Fatalf("rows after /a hubs = %v", got)
	}
	if m.cursorPath != "|/|/a" {
		t.Fatalf("cursor moved to %q", m.cursorPath)
	}

	m = press(t, m, "j", "h", "k")
	if m.cursorPath != "|/|/b|/h" {
		t.Fatalf("cursor = %q", m.cursorPath)
	}
	if !m.tracker.HasDuplicates("/h") {
		t.Fatal("tracker should see /h twice")
	}
	if !strings.Contains(plainView(m), "^ hub") {
		t.Errorf("duplicate should show a jump control:\n%s", plainView(m))
	}

	m = press(t, m, "n")
	if m.cursorPath != "|/|/a|/h" {
		t.Errorf("jump landed on %q", m.cursorPath)
	}
	m = press(t, m, "n")
	if m.cursorPath != "|/|/b|/h" {
		t.Errorf("second jump landed on %q", m.cursorPath)
	}
}

func TestSavedViewOrderSurvivesLoad(t *testing.T) {
	m, _ := newTestModelWith(t, map[string]string{
		docEntries:        testEntries,
		docInstanceStates: `{"|/": {"expanded_subs": true}, "|/|/a": {"expanded_hubs": true}, "|/|/b": {"expanded_hubs": true}}`,
		docViewOrder:      `{"/h": ["|/|/b|/h", "|/|/a|/h"]}`,
	})
	if got := view.InstancePaths(m.Rows()); !reflect.DeepEqual(got, []string{"|/", "|/|/a|/h", "|/|/a", "|/|/b|/h", "|/|/b"}) {
		t.Fatalf("rows = %v", got)
	}
	want := []string{"|/|/b|/h", "|/|/a|/h"}
	if got := m.tracker.Instances("/h"); !reflect.DeepEqual(got, want) {
		t.Errorf("order after startup = %v, want %v", got, want)
	}

	// A later external write of the order replaces it the same way.
	m = update(t, m, batchOf(map[string]string{docViewOrder: `{"/h": ["|/|/a|/h", "|/|/b|/h"]}`}, drive.Origin{}))
	if got := m.tracker.Instances("/h"); !reflect.DeepEqual(got, []string{"|/|/a|/h", "|/|/b|/h"}) {
		t.Errorf("order after update = %v", got)
	}
}

func TestSelectAndConfirm(t *testing.T) {
	m, d := newTestModel(t, testEntries)

	m = press(t, m, "j", "enter")
	if !reflect.DeepEqual(m.selected, []string{"|/|/a"}) || m.lastClicked != "|/|/a" {
		t.Fatalf("selected = %v, last clicked = %q", m.selected, m.lastClicked)
	}
	if !strings.Contains(plainView(m), "alpha [ ]") {
		t.Errorf("selected row should show a checkbox:\n%s", plainView(m))
	}

	m = press(t, m, "space")
	var confirmed, selected []string
	readDoc(t, d, docConfirmed, &confirmed)
	readDoc(t, d, docSelected, &selected)
	if !reflect.DeepEqual(confirmed, []string{"|/|/a"}) || len(selected) != 0 {
		t.Errorf("confirmed = %v, selected = %v", confirmed, selected)
	}
	if !strings.Contains(plainView(m), "alpha [x]") {
		t.Errorf("confirmed row should show a checked box:\n%s", plainView(m))
	}

	m = press(t, m, "space")
	if !reflect.DeepEqual(m.selected, []string{"|/|/a"}) || len(m.confirmed) != 0 {
		t.Errorf("unconfirm: selected = %v, confirmed = %v", m.selected, m.confirmed)
	}

	// Confirming needs a selection first.
	m = press(t, m, "j", "space")
	if msg, _ := m.Status(); msg == "" {
		t.Error("expected a status hint")
	}
}

func TestMultiAndRangeSelect(t *testing.T) {
	m, d := newTestModel(t, testEntries)

	m = press(t, m, "M", "j", "enter", "j", "enter")
	if !reflect.DeepEqual(m.selected, []string{"|/|/a", "|/|/b"}) {
		t.Fatalf("multi-select = %v", m.selected)
	}
	var multi bool
	readDoc(t, d, docMultiSelect, &multi)
	if !multi {
		t.Error("multi_select_enabled not stored")
	}

	m = press(t, m, "M", "B", "g", "enter")
	if !reflect.DeepEqual(m.selected, []string{"|/", "|/|/a", "|/|/b"}) {
		t.Errorf("range select = %v", m.selected)
	}

	m = press(t, m, "B", "x")
	if !reflect.DeepEqual(m.selected, []string{"|/|/a", "|/|/b"}) {
		t.Errorf("toggle off root = %v", m.selected)
	}
}

func TestSearchAndPromote(t *testing.T) {
	m, d := newTestModel(t, testEntries)

	m = press(t, m, "/")
	if m.Mode() != ModeSearch {
		t.Fatalf("mode = %q", m.Mode())
	}
	m = typeText(t, m, "x")
	if got := view.InstancePaths(m.search.Rows); !reflect.DeepEqual(got, []string{"|/", "|/|/a", "|/|/a|/a/x"}) {
		t.Fatalf("search rows = %v", got)
	}
	out := plainView(m)
	if !strings.Contains(out, "x.go +") {
		t.Errorf("new entry should be marked:\n%s", out)
	}
	var q string
	readDoc(t, d, docSearchQuery, &q)
	if q != "x" {
		t.Errorf("stored query = %q", q)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, "enter")

	if m.Mode() != ModeMenubar {
		t.Errorf("mode after promote = %q", m.Mode())
	}
	if view.IndexOf(m.Rows(), "|/|/a|/a/x") < 0 {
		t.Errorf("promoted row missing from %v", view.InstancePaths(m.Rows()))
	}
	if !reflect.DeepEqual(m.selected, []string{"|/|/a|/a/x"}) {
		t.Errorf("selected = %v", m.selected)
	}
	var mode string
	readDoc(t, d, docCurrentMode, &mode)
	if mode != ModeMenubar {
		t.Errorf("stored mode = %q", mode)
	}
}

func TestSearchNoResultsAndLeave(t *testing.T) {
	m, d := newTestModel(t, testEntries)

	m = press(t, m, "m")
	if m.Mode() != ModeDefault {
		t.Fatalf("menubar toggle gave %q", m.Mode())
	}
	m = press(t, m, "/")
	m = typeText(t, m, "zzz")
	if out := plainView(m); !strings.Contains(out, `No results for "zzz"`) {
		t.Errorf("missing no-results line:\n%s", out)
	}
	var prev string
	readDoc(t, d, docPreviousMode, &prev)
	if prev != ModeDefault {
		t.Errorf("previous mode = %q", prev)
	}

	m = press(t, m, "esc")
	if m.Mode() != ModeDefault || m.query != "" {
		t.Errorf("after esc: mode %q, query %q", m.Mode(), m.query)
	}
	var q string
	readDoc(t, d, docSearchQuery, &q)
	if q != "" {
		t.Errorf("stored query = %q", q)
	}
}

func TestSearchModeToggleUsesSearchStates(t *testing.T) {
	m, _ := newTestModel(t, testEntries)
	m = press(t, m, "/")
	m = typeText(t, m, "beta")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursorPath != "|/|/b" {
		t.Fatalf("cursor = %q", m.cursorPath)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if !m.searchStates.Peek("|/|/b").ExpandedHubs {
		t.Error("search-mode hub toggle should change search states")
	}
	if m.states.Peek("|/|/b").ExpandedHubs {
		t.Error("default states must not change in search")
	}
	if view.IndexOf(m.search.Rows, "|/|/b|/h") < 0 {
		t.Errorf("hub missing from search rows %v", view.InstancePaths(m.search.Rows))
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if len(m.searchStates) != 0 {
		t.Errorf("reset in search left %v", m.searchStates)
	}
}

func TestEchoSuppression(t *testing.T) {
	m, _ := newTestModel(t, testEntries)
	m = press(t, m, "j", "l")
	rows := len(m.Rows())

	collapsed := map[string]string{docInstanceStates: `{"|/": {"expanded_subs": false}}`}
	before := metrics.EchoesSuppressed.Value()
	m = update(t, m, batchOf(collapsed, drive.Origin{Writer: m.Writer(), Version: m.version}))
	if len(m.Rows()) != rows {
		t.Errorf("own echo was applied: %d rows", len(m.Rows()))
	}
	if metrics.EchoesSuppressed.Value() != before+1 {
		t.Error("echo not counted")
	}

	m = update(t, m, batchOf(collapsed, drive.Origin{}))
	if len(m.Rows()) != 1 {
		t.Errorf("external change not applied: %v", view.InstancePaths(m.Rows()))
	}
}

func TestUnknownEventType(t *testing.T) {
	m, _ := newTestModel(t, testEntries)

	var ch change
	err := m.applyEvent(drive.Event{Type: "bogus", Paths: []string{"bogus/x.json"}}, nil, &ch)
	if !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("err = %v", err)
	}

	m = update(t, m, batchOf(map[string]string{
		"bogus/x.json": `1`,
		docSelected:    `["|/|/b"]`,
	}, drive.Origin{}))
	if msg, isErr := m.Status(); !isErr || !strings.Contains(msg, "unknown event type") {
		t.Errorf("status = %q (error %v)", msg, isErr)
	}
	if !reflect.DeepEqual(m.selected, []string{"|/|/b"}) {
		t.Errorf("other events should still apply, selected = %v", m.selected)
	}
}

func TestModeDocuments(t *testing.T) {
	m, _ := newTestModel(t, testEntries)

	m = update(t, m, batchOf(map[string]string{docCurrentMode: `"bogus"`}, drive.Origin{}))
	if m.Mode() != ModeMenubar {
		t.Errorf("invalid mode accepted: %q", m.Mode())
	}

	m = update(t, m, batchOf(map[string]string{
		docCurrentMode:   `"search"`,
		docSearchQuery:   `"alp"`,
		docSelectBetween: `true`,
	}, drive.Origin{}))
	if m.Mode() != ModeSearch || m.query != "alp" || !m.selectBetween {
		t.Errorf("mode %q, query %q, between %v", m.Mode(), m.query, m.selectBetween)
	}
	if m.previousMode != ModeMenubar {
		t.Errorf("previous mode = %q", m.previousMode)
	}
	if view.IndexOf(m.search.Rows, "|/|/a") < 0 {
		t.Errorf("search not run: %v", view.InstancePaths(m.search.Rows))
	}

	m = update(t, m, batchOf(map[string]string{docSelected: `{not json`}, drive.Origin{}))
	if len(m.selected) != 0 {
		t.Errorf("malformed document changed selection: %v", m.selected)
	}
}

func TestHubsPolicy(t *testing.T) {
	m, _ := newTestModel(t, testEntries)
	states := `{"|/": {"expanded_subs": true}, "|/|/a": {"expanded_hubs": true}, "|/|/b": {"expanded_hubs": true}}`

	m = update(t, m, batchOf(map[string]string{docHubs: `false`, docInstanceStates: states}, drive.Origin{}))
	if got := view.InstancePaths(m.Rows()); !reflect.DeepEqual(got, []string{"|/", "|/|/a|/h", "|/|/a", "|/|/b"}) {
		t.Errorf("suppressed rows = %v", got)
	}

	m = update(t, m, batchOf(map[string]string{docHubs: `true`}, drive.Origin{}))
	if len(m.Rows()) != 5 {
		t.Errorf("plain duplicates: %v", view.InstancePaths(m.Rows()))
	}
	if strings.Contains(plainView(m), "^") {
		t.Error("plain policy should not draw jump controls")
	}

	m = update(t, m, batchOf(map[string]string{docHubs: `"default"`}, drive.Origin{}))
	if !strings.Contains(plainView(m), "^ hub") {
		t.Error("default policy should draw jump controls")
	}

	m = update(t, m, batchOf(map[string]string{docHubs: `"sometimes"`}, drive.Origin{}))
	if m.hubs != "default" {
		t.Errorf("unknown policy replaced %q", m.hubs)
	}
}

func TestReset(t *testing.T) {
	m, d := newTestModel(t, testEntries)
	m = press(t, m, "j", "l", "h", "enter", "]")
	if m.hscroll == 0 || len(m.Rows()) == 3 {
		t.Fatalf("setup failed: hscroll %d, rows %d", m.hscroll, len(m.Rows()))
	}

	m = press(t, m, "r")
	if len(m.Rows()) != 3 || len(m.selected) != 0 || m.hscroll != 0 {
		t.Errorf("rows %d, selected %v, hscroll %d", len(m.Rows()), m.selected, m.hscroll)
	}
	var states view.StateMap
	readDoc(t, d, docInstanceStates, &states)
	if !reflect.DeepEqual(states, view.ResetStates()) {
		t.Errorf("stored states = %v", states)
	}
	var left float64
	readDoc(t, d, docHorizontalScroll, &left)
	if left != 0 {
		t.Errorf("stored horizontal scroll = %v", left)
	}
}

func TestMouseClicks(t *testing.T) {
	m, _ := newTestModel(t, testEntries)
	y := m.headerLines() + 1 // the /a row

	row := m.Rows()[1]
	iconCol := 0
	for _, p := range m.rowParts(row) {
		if p.kind == partIcon {
			break
		}
		iconCol += len([]rune(p.text))
	}
	m = update(t, m, tea.MouseMsg{X: iconCol, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if !m.states.Peek("|/|/a").ExpandedHubs {
		t.Fatal("icon click should toggle hubs")
	}

	// The root row's wand resets.
	m = update(t, m, tea.MouseMsg{X: 0, Y: m.headerLines(), Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if m.states.Peek("|/|/a").ExpandedHubs {
		t.Error("wand click should reset")
	}
}

func manyEntries(t *testing.T, n int) string {
	t.Helper()
	raw, err := testutil.NewDefault().Star(n).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestVirtualWindow(t *testing.T) {
	m, d := newTestModel(t, manyEntries(t, 300))
	if len(m.Rows()) != 301 {
		t.Fatalf("rows = %d", len(m.Rows()))
	}
	if m.win.Start() != 0 || m.win.End() != 50 {
		t.Fatalf("window [%d,%d)", m.win.Start(), m.win.End())
	}

	for i := 0; i < 3; i++ {
		m = update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	}
	if m.win.ScrollTop() != 9 || m.win.End() != 100 {
		t.Errorf("after wheel: top %d, window [%d,%d)", m.win.ScrollTop(), m.win.Start(), m.win.End())
	}

	m = press(t, m, "G")
	if m.cursorPath != "|/|/n299" {
		t.Fatalf("cursor = %q", m.cursorPath)
	}
	if !m.win.IsRendered(300) {
		t.Errorf("last row not rendered, window [%d,%d)", m.win.Start(), m.win.End())
	}
	if m.win.Rendered() > m.win.Limit() {
		t.Errorf("window holds %d rows", m.win.Rendered())
	}
	if !strings.Contains(plainView(m), "node-299") {
		t.Error("last row not on screen")
	}

	var top float64
	readDoc(t, d, docVerticalScroll, &top)
	if int(top) != m.win.ScrollTop() {
		t.Errorf("stored scroll %v, window at %d", top, m.win.ScrollTop())
	}
}

func TestTallTerminalFillSettles(t *testing.T) {
	m, _ := newTestModel(t, manyEntries(t, 2000))
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 80})
	m = update(t, m, batchOf(map[string]string{docVerticalScroll: `1000`}, drive.Origin{}))

	if m.win.ScrollTop() != 1000 {
		t.Fatalf("scroll top = %d", m.win.ScrollTop())
	}
	if m.win.Filling() || m.win.NeedsFill() != vscroll.None {
		t.Errorf("fill still pending, window [%d,%d)", m.win.Start(), m.win.End())
	}
	first, last := m.win.VisibleRange()
	if !m.win.IsRendered(first) || !m.win.IsRendered(last-1) {
		t.Errorf("visible [%d,%d) outside window [%d,%d)", first, last, m.win.Start(), m.win.End())
	}
	if m.win.Rendered() > m.win.Limit() {
		t.Errorf("window holds %d rows, limit %d", m.win.Rendered(), m.win.Limit())
	}
	if !strings.Contains(plainView(m), "node-0999") {
		t.Error("row at the scroll offset not on screen")
	}
}

func TestScrollDocumentRestoresPosition(t *testing.T) {
	m, _ := newTestModel(t, manyEntries(t, 300))
	m = update(t, m, batchOf(map[string]string{docVerticalScroll: `200`}, drive.Origin{}))
	if m.win.ScrollTop() != 200 {
		t.Fatalf("scroll top = %d", m.win.ScrollTop())
	}
	if !m.win.IsRendered(200) {
		t.Errorf("window [%d,%d) detached from viewport", m.win.Start(), m.win.End())
	}
	if m.persistedTop != 200 {
		t.Errorf("loaded scroll should count as persisted, got %v", m.persistedTop)
	}
}

func TestStyleDocument(t *testing.T) {
	m, _ := newTestModel(t, testEntries)
	m = update(t, m, batchOf(map[string]string{"style/theme.css": `:host { --primary: #112233; --bogus: #fff; }`}, drive.Origin{}))
	if m.theme.Primary != ThemeFg("#112233") {
		t.Errorf("primary = %v", m.theme.Primary)
	}
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, testEntries)
	m = press(t, m, "?")
	if !m.showHelp || m.helpText == "" {
		t.Fatal("help not shown")
	}
	if !strings.Contains(plainView(m), "close") {
		t.Error("help footer missing")
	}
	m = press(t, m, "?")
	if m.showHelp {
		t.Error("help should close")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, testEntries)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
