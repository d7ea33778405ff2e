package ui

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/key"

	"github.com/vanderheijden86/hubtree/pkg/config"
)

// KeyMap binds the explorer's actions to keys.
type KeyMap struct {
	ToggleSubs    key.Binding
	ToggleHubs    key.Binding
	Select        key.Binding
	MultiSelect   key.Binding
	RangeSelect   key.Binding
	Confirm       key.Binding
	Jump          key.Binding
	Reset         key.Binding
	Search        key.Binding
	Leave         key.Binding
	Menubar       key.Binding
	ToggleMulti   key.Binding
	ToggleBetween key.Binding
	Copy          key.Binding
	Help          key.Binding
	Up            key.Binding
	Down          key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	Left          key.Binding
	Right         key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the built-in bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ToggleSubs:    key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l/tab", "expand or collapse subs")),
		ToggleHubs:    key.NewBinding(key.WithKeys("h", "shift+tab"), key.WithHelp("h", "expand or collapse hubs")),
		Select:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select; in search, open in tree")),
		MultiSelect:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "add or remove from selection")),
		RangeSelect:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "select from last clicked to here")),
		Confirm:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "confirm or unconfirm")),
		Jump:          key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "jump to next occurrence")),
		Reset:         key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "reset expansion and selection")),
		Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Leave:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave search or help")),
		Menubar:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "show or hide the menubar")),
		ToggleMulti:   key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "multi-select mode")),
		ToggleBetween: key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "select-between mode")),
		Copy:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy instance path")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:        key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:      key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:           key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:        key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Left:          key.NewBinding(key.WithKeys("["), key.WithHelp("[", "scroll left")),
		Right:         key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "scroll right")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (km *KeyMap) byName() map[string]*key.Binding {
	return map[string]*key.Binding{
		"toggle_subs":    &km.ToggleSubs,
		"toggle_hubs":    &km.ToggleHubs,
		"select":         &km.Select,
		"multi_select":   &km.MultiSelect,
		"range_select":   &km.RangeSelect,
		"confirm":        &km.Confirm,
		"jump":           &km.Jump,
		"reset":          &km.Reset,
		"search":         &km.Search,
		"leave":          &km.Leave,
		"menubar":        &km.Menubar,
		"toggle_multi":   &km.ToggleMulti,
		"toggle_between": &km.ToggleBetween,
		"copy":           &km.Copy,
		"help":           &km.Help,
		"up":             &km.Up,
		"down":           &km.Down,
		"page_up":        &km.PageUp,
		"page_down":      &km.PageDown,
		"top":            &km.Top,
		"bottom":         &km.Bottom,
		"left":           &km.Left,
		"right":          &km.Right,
		"quit":           &km.Quit,
	}
}

// Apply replaces the keys of the named actions. Unknown actions and empty
// key lists are reported; the other overrides still apply.
func (km *KeyMap) Apply(overrides map[string][]string) error {
	bindings := km.byName()
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		keys := overrides[name]
		b, ok := bindings[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: unknown key action %q", config.ErrInvalid, name))
			continue
		}
		if len(keys) == 0 {
			errs = append(errs, fmt.Errorf("%w: no keys for action %q", config.ErrInvalid, name))
			continue
		}
		b.SetKeys(keys...)
		b.SetHelp(keys[0], b.Help().Desc)
	}
	return errors.Join(errs...)
}

// helpGroups lists bindings in the order the help screen shows them.
func (km KeyMap) helpGroups() []helpGroup {
	return []helpGroup{
		{"Tree", []key.Binding{km.ToggleSubs, km.ToggleHubs, km.Jump, km.Reset}},
		{"Selection", []key.Binding{km.Select, km.MultiSelect, km.RangeSelect, km.Confirm, km.Copy}},
		{"Modes", []key.Binding{km.Search, km.Leave, km.Menubar, km.ToggleMulti, km.ToggleBetween}},
		{"Scrolling", []key.Binding{km.Up, km.Down, km.PageUp, km.PageDown, km.Top, km.Bottom, km.Left, km.Right}},
		{"General", []key.Binding{km.Help, km.Quit}},
	}
}

type helpGroup struct {
	title    string
	bindings []key.Binding
}
