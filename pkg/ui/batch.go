package ui

import (
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/debug"
	"github.com/vanderheijden86/hubtree/pkg/graph"
	"github.com/vanderheijden86/hubtree/pkg/metrics"
	"github.com/vanderheijden86/hubtree/pkg/view"
)

// ErrUnknownEventType is wrapped when a batch carries a kind the explorer
// has no handler for.
var ErrUnknownEventType = errors.New("unknown event type")

// change collects what a batch invalidated, applied once at the end.
type change struct {
	rebuild  bool
	research bool
	scroll   *int
}

// isEcho reports whether b is the drive reporting this model's own writes.
func (m *Model) isEcho(b drive.Batch) bool {
	return b.Origin.Writer == m.writer && b.Origin.Version <= m.version
}

func (m *Model) handleBatch(msg BatchMsg) tea.Cmd {
	if m.isEcho(msg.Batch) {
		metrics.EchoesSuppressed.Inc()
		debug.Log("ignoring echo of version %d", msg.Batch.Origin.Version)
		return nil
	}
	metrics.BatchesApplied.Inc()

	var ch change
	for _, ev := range msg.Batch.Events {
		if err := m.applyEvent(ev, msg.Docs, &ch); err != nil {
			log.Printf("warning: %v", err)
			m.setError(err)
		}
	}
	return m.settle(ch)
}

func (m *Model) applyEvent(ev drive.Event, docs map[string][]byte, ch *change) error {
	switch ev.Type {
	case drive.KindEntries:
		m.onEntries(ev.Paths, docs, ch)
	case drive.KindStyle:
		m.onStyle(ev.Paths, docs)
	case drive.KindRuntime:
		m.onRuntime(ev.Paths, docs, ch)
	case drive.KindMode:
		m.onMode(ev.Paths, docs, ch)
	case drive.KindFlags:
		m.onFlags(ev.Paths, docs, ch)
	default:
		return fmt.Errorf("%w: %q with %d paths", ErrUnknownEventType, ev.Type, len(ev.Paths))
	}
	return nil
}

// settle applies the collected invalidations.
func (m *Model) settle(ch change) tea.Cmd {
	if ch.rebuild {
		m.rebuild("", false)
	}
	if ch.research && m.mode == ModeSearch {
		m.runSearch()
	}
	if ch.scroll != nil {
		m.win.ScrollTo(*ch.scroll)
		if m.win.Detached() {
			m.win.Rebuild(m.win.Total(), m.win.ScrollTop())
		}
	}
	m.syncCursor()
	return tea.Batch(m.flush(), m.startFill())
}

func (m *Model) onEntries(paths []string, docs map[string][]byte, ch *change) {
	if len(paths) == 0 {
		return
	}
	p := docEntries
	if !containsPath(paths, p) {
		p = paths[0]
	}
	ch.rebuild, ch.research = true, true

	raw, ok := docs[p]
	if !ok {
		log.Printf("warning: entries document %s is missing", p)
		m.entries = nil
		return
	}
	entries, err := graph.Parse(raw)
	if err != nil {
		log.Printf("warning: %v", err)
		m.setError(err)
		m.entries = nil
		return
	}
	m.entries = entries
	if !entries.HasRoot() {
		log.Printf("warning: root %q not found in entries, clearing view", graph.RootPath)
		return
	}
	m.states.EnsureRoot()
}

func (m *Model) onStyle(paths []string, docs map[string][]byte) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	var css strings.Builder
	for _, p := range sorted {
		if raw, ok := docs[p]; ok {
			css.Write(raw)
			css.WriteByte('\n')
		}
	}
	m.theme = m.baseTheme.WithProperties(ParseCustomProperties(css.String()))
}

func (m *Model) onRuntime(paths []string, docs map[string][]byte, ch *change) {
	for _, p := range paths {
		raw, ok := docs[p]
		if !ok {
			continue
		}
		switch path.Base(p) {
		case path.Base(docNodeHeight):
			var v float64
			if decode(p, raw, &v) && v > 0 {
				m.nodeHeight = v
			}
		case path.Base(docVerticalScroll):
			var v float64
			if decode(p, raw, &v) {
				m.persistedTop = v
				top := m.linesFromDrive(v)
				ch.scroll = &top
			}
		case path.Base(docHorizontalScroll):
			var v float64
			if decode(p, raw, &v) {
				m.persistedLeft = v
				m.hscroll = max(0, int(v))
			}
		case path.Base(docSelected):
			var v []string
			if decode(p, raw, &v) {
				m.selected = v
			}
		case path.Base(docConfirmed):
			var v []string
			if decode(p, raw, &v) {
				m.confirmed = v
			}
		case path.Base(docInstanceStates):
			var v view.StateMap
			if decode(p, raw, &v) {
				if v == nil {
					log.Printf("warning: %s is not an object, ignoring", p)
					continue
				}
				m.states = v
				ch.rebuild = true
			}
		case path.Base(docSearchEntryStates):
			var v view.StateMap
			if decode(p, raw, &v) {
				if v == nil {
					log.Printf("warning: %s is not an object, ignoring", p)
					continue
				}
				m.searchStates = v
				ch.research = true
			}
		case path.Base(docLastClicked):
			var v *string
			if decode(p, raw, &v) {
				m.lastClicked = ""
				if v != nil {
					m.lastClicked = *v
				}
			}
		case path.Base(docViewOrder):
			var v map[string][]string
			if decode(p, raw, &v) {
				// The rows may still be the previous view; settle resyncs
				// the loaded order once the new one is built.
				m.tracker.Load(v)
				ch.rebuild = true
			}
		default:
			log.Printf("warning: unknown runtime document %s", p)
		}
	}
}

func (m *Model) onMode(paths []string, docs map[string][]byte, ch *change) {
	var (
		current, previous, query *string
		multi, between           *bool
	)
	for _, p := range paths {
		raw, ok := docs[p]
		if !ok {
			continue
		}
		switch path.Base(p) {
		case path.Base(docCurrentMode):
			decode(p, raw, &current)
		case path.Base(docPreviousMode):
			decode(p, raw, &previous)
		case path.Base(docSearchQuery):
			decode(p, raw, &query)
		case path.Base(docMultiSelect):
			decode(p, raw, &multi)
		case path.Base(docSelectBetween):
			decode(p, raw, &between)
		default:
			log.Printf("warning: unknown mode document %s", p)
		}
	}

	if query != nil && *query != m.query {
		m.query = strings.TrimSpace(*query)
		m.input.SetValue(m.query)
		ch.research = true
	}
	if previous != nil && ValidMode(*previous) && *previous != ModeSearch {
		m.previousMode = *previous
	}
	if multi != nil {
		m.multiSelect = *multi
	}
	if between != nil {
		m.selectBetween = *between
	}
	if current == nil || *current == m.mode {
		return
	}
	if !ValidMode(*current) {
		log.Printf("warning: invalid mode %q, ignoring", *current)
		m.setError(fmt.Errorf("invalid mode %q", *current))
		return
	}
	if *current == ModeSearch {
		// setMode persists previous_mode.
		m.beginAction()
	}
	m.setMode(*current)
	ch.research = true
}

func (m *Model) onFlags(paths []string, docs map[string][]byte, ch *change) {
	for _, p := range paths {
		raw, ok := docs[p]
		if !ok {
			continue
		}
		if path.Base(p) != path.Base(docHubs) {
			log.Printf("warning: unknown flag document %s", p)
			continue
		}
		var v any
		if !decode(p, raw, &v) {
			continue
		}
		policy := fmt.Sprint(v)
		if !config.ValidHubsPolicy(policy) {
			log.Printf("warning: unknown hubs policy %v, keeping %q", v, m.hubs)
			continue
		}
		if policy != m.hubs {
			m.hubs = policy
			ch.rebuild, ch.research = true, true
		}
	}
}

func containsPath(paths []string, p string) bool {
	for _, q := range paths {
		if q == p {
			return true
		}
	}
	return false
}
