// Package ui is the terminal explorer: a bubbletea model that renders the
// hub/sub view of a drive's entries and writes user actions back to it.
package ui

import (
	"context"
	"log"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/graph"
	"github.com/vanderheijden86/hubtree/pkg/view"
	"github.com/vanderheijden86/hubtree/pkg/vscroll"
)

// Modes.
const (
	ModeDefault = "default"
	ModeMenubar = "menubar"
	ModeSearch  = "search"
)

// ValidMode reports whether s names a mode.
func ValidMode(s string) bool {
	switch s {
	case ModeDefault, ModeMenubar, ModeSearch:
		return true
	}
	return false
}

// Documents the explorer reads and writes.
const (
	docEntries           = "entries/entries.json"
	docNodeHeight        = "runtime/node_height.json"
	docVerticalScroll    = "runtime/vertical_scroll_value.json"
	docHorizontalScroll  = "runtime/horizontal_scroll_value.json"
	docSelected          = "runtime/selected_instance_paths.json"
	docConfirmed         = "runtime/confirmed_selected.json"
	docInstanceStates    = "runtime/instance_states.json"
	docSearchEntryStates = "runtime/search_entry_states.json"
	docLastClicked       = "runtime/last_clicked_node.json"
	docViewOrder         = "runtime/view_order_tracking.json"
	docCurrentMode       = "mode/current_mode.json"
	docPreviousMode      = "mode/previous_mode.json"
	docSearchQuery       = "mode/search_query.json"
	docMultiSelect       = "mode/multi_select_enabled.json"
	docSelectBetween     = "mode/select_between_enabled.json"
	docHubs              = "flags/hubs.json"
)

// Model is the explorer. Everything it shows is derived from documents in
// its drive; every user action is written back, stamped with the model's
// writer id and a version so the echo can be recognized.
type Model struct {
	drive drive.Drive
	cfg   config.Config
	keys  KeyMap

	baseTheme Theme
	theme     Theme

	ctx    context.Context
	cancel context.CancelFunc
	watch  <-chan drive.Batch

	writer   string
	version  uint64
	pending  []docWrite
	flushing bool

	entries      graph.Entries
	states       view.StateMap
	searchStates view.StateMap
	rows         []view.Row
	paths        []string
	tracker      *view.Tracker
	win          *vscroll.Window

	search        view.SearchResult
	searchTracker *view.Tracker
	searchTop     int

	mode          string
	previousMode  string
	query         string
	input         textinput.Model
	multiSelect   bool
	selectBetween bool
	hubs          string

	selected    []string
	confirmed   []string
	lastClicked string

	nodeHeight    float64
	hscroll       int
	persistedTop  float64
	persistedLeft float64
	scrollPending bool

	cursor     int
	cursorPath string

	flash    string
	flashSeq int

	width, height int
	ready         bool
	showHelp      bool
	helpText      string

	status    string
	statusErr bool
}

// NewModel returns an explorer over d. Nothing is read until the program
// starts and Init subscribes to the drive.
func NewModel(d drive.Drive, cfg config.Config, theme Theme) Model {
	ctx, cancel := context.WithCancel(context.Background())

	keys := DefaultKeyMap()
	keyErr := keys.Apply(cfg.UI.Keys)

	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "Search entries..."
	input.Cursor.SetMode(cursor.CursorStatic)

	hubs := cfg.UI.Hubs
	if !config.ValidHubsPolicy(hubs) {
		hubs = config.HubsDefault
	}

	m := Model{
		drive:        d,
		cfg:          cfg,
		keys:         keys,
		baseTheme:    theme,
		theme:        theme,
		ctx:          ctx,
		cancel:       cancel,
		writer:       uuid.NewString(),
		states:       make(view.StateMap),
		searchStates: make(view.StateMap),
		tracker:      view.NewTracker(),
		win: vscroll.New(vscroll.Config{
			ChunkSize:   cfg.Window.ChunkSize,
			MaxRendered: cfg.Window.MaxRendered,
			RowHeight:   cfg.Window.RowHeight,
			RootMargin:  cfg.Window.RootMargin,
		}),
		mode:         ModeMenubar,
		previousMode: ModeMenubar,
		input:        input,
		hubs:         hubs,
		nodeHeight:   1,
	}
	if keyErr != nil {
		log.Printf("warning: key bindings: %v", keyErr)
		m.setError(keyErr)
	}
	return m
}

// Init subscribes to the drive.
func (m Model) Init() tea.Cmd {
	return subscribeCmd(m.ctx, m.drive)
}

// Stop ends the subscription. The drive itself stays open.
func (m Model) Stop() {
	m.cancel()
}

// Writer is the id stamped on this model's writes.
func (m Model) Writer() string { return m.writer }

// Mode returns the current mode.
func (m Model) Mode() string { return m.mode }

// Rows returns the default view.
func (m Model) Rows() []view.Row { return m.rows }

// Status returns the status line message and whether it is an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.input.Width = max(0, m.width-4)
		m.win.SetViewport(m.bodyHeight())
		if m.showHelp {
			m.helpText = renderHelp(helpMarkdown(m.keys, m.cfg.MouseEnabled()), m.width)
		}
		return m, m.startFill()

	case watchStartedMsg:
		m.watch = msg.ch
		return m, listenCmd(m.ctx, m.drive, m.watch)

	case watchClosedMsg:
		m.watch = nil
		if msg.err != nil {
			log.Printf("warning: %v", msg.err)
			m.setError(msg.err)
		}
		return m, nil

	case BatchMsg:
		cmd := m.handleBatch(msg)
		if m.watch != nil {
			cmd = tea.Batch(cmd, listenCmd(m.ctx, m.drive, m.watch))
		}
		return m, cmd

	case writeDoneMsg:
		m.flushing = false
		if msg.err != nil {
			log.Printf("warning: %v", msg.err)
			m.setError(msg.err)
		}
		return m, m.flush()

	case fillStepMsg:
		return m, m.fillStep(msg.gen)

	case scrollPersistMsg:
		m.scrollPending = false
		return m, m.persistScroll()

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("copied " + msg.text)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

// searching reports whether the search view replaces the default view.
func (m *Model) searching() bool {
	return m.mode == ModeSearch && m.query != ""
}

// currentRows returns the rows on screen.
func (m *Model) currentRows() []view.Row {
	if m.searching() {
		return m.search.Rows
	}
	return m.rows
}

// stateOf returns the expansion state a row is drawn with.
func (m *Model) stateOf(instancePath string) view.InstanceState {
	if m.searching() {
		return m.search.States.Peek(instancePath)
	}
	return m.states.Peek(instancePath)
}

func (m *Model) activeTracker() *view.Tracker {
	if m.searching() && m.searchTracker != nil {
		return m.searchTracker
	}
	return m.tracker
}

// rebuild recomputes the default view after a change. focal is the
// toggled instance, or empty for a change that may touch any row; the
// tracker is then rebuilt in full. hubToggle keeps the focal row in place
// with a spacer when the view above it grew.
func (m *Model) rebuild(focal string, hubToggle bool) {
	oldRows, oldPaths := m.rows, m.paths
	m.rows = view.Build(m.entries, m.states, view.BuildOptions{
		SuppressDuplicateHubs: m.hubs == config.HubsHide,
	})
	m.paths = view.InstancePaths(m.rows)
	if focal != "" && m.hubs != config.HubsHide {
		m.tracker.Apply(oldRows, m.rows, focal)
	} else {
		m.tracker.Rebuild(m.rows)
	}

	rh := m.win.Config().RowHeight
	top := vscroll.AnchorScrollTop(m.win.ScrollTop(), rh, oldPaths, m.paths, focal)
	m.win.Rebuild(len(m.rows), top)
	if hubToggle {
		m.win.PlaceSpacer(len(m.rows), top)
	}
	m.win.ScrollTo(top)
	m.syncCursor()
}

// runSearch recomputes the search view for the current query.
func (m *Model) runSearch() {
	if m.query == "" {
		m.search = view.SearchResult{}
		m.searchTracker = nil
		return
	}
	m.search = view.Search(m.entries, m.query, m.searchStates, m.rows)
	m.searchTracker = view.NewTracker()
	m.searchTracker.Rebuild(m.search.Rows)
	m.syncCursor()
}

// syncCursor keeps the cursor on the same instance across view changes.
func (m *Model) syncCursor() {
	rows := m.currentRows()
	if m.cursorPath != "" {
		if i := view.IndexOf(rows, m.cursorPath); i >= 0 {
			m.cursor = i
			return
		}
	}
	m.cursor = min(max(0, m.cursor), max(0, len(rows)-1))
	m.cursorPath = ""
	if m.cursor < len(rows) {
		m.cursorPath = rows[m.cursor].InstancePath
	}
}

// setMode switches modes and records the mode search was entered from.
// Callers persist current_mode themselves.
func (m *Model) setMode(next string) {
	if next == m.mode {
		return
	}
	if next == ModeSearch {
		m.previousMode = m.mode
		m.write(docPreviousMode, m.previousMode)
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.mode = next
	m.win.SetViewport(m.bodyHeight())
	m.syncCursor()
}

// returnMode is the mode leaving search goes back to.
func (m *Model) returnMode() string {
	if m.previousMode == "" || m.previousMode == ModeSearch || !ValidMode(m.previousMode) {
		return ModeMenubar
	}
	return m.previousMode
}
