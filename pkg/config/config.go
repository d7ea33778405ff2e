// Package config loads and saves hubtree's configuration.
//
// Files follow the XDG Base Directory layout:
//   - Config: ~/.config/hubtree/config.yaml
//   - Data:   ~/.local/share/hubtree/ (default drive directory and database)
//
// Precedence is command-line flag, then environment, then file, then the
// defaults below.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "hubtree"

// Drive backends.
const (
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
	BackendMem    = "mem"
)

// Hub duplication policies, matching the values of flags/hubs.json.
const (
	HubsDefault = "default" // duplicates shown with a jump control
	HubsShow    = "true"    // duplicates shown plainly
	HubsHide    = "false"   // duplicate hubs suppressed
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// DriveConfig selects and tunes the state store.
type DriveConfig struct {
	Backend      string `yaml:"backend,omitempty"`       // dir, sqlite or mem
	Path         string `yaml:"path,omitempty"`          // directory or database file
	Debounce     string `yaml:"debounce,omitempty"`      // e.g. "50ms"
	PollInterval string `yaml:"poll_interval,omitempty"` // e.g. "1s"
	ForcePoll    bool   `yaml:"force_poll,omitempty"`    // skip fsnotify
}

// WindowConfig tunes virtual scrolling, in rows.
type WindowConfig struct {
	ChunkSize   int `yaml:"chunk_size,omitempty"`
	MaxRendered int `yaml:"max_rendered,omitempty"`
	RowHeight   int `yaml:"row_height,omitempty"`
	RootMargin  int `yaml:"root_margin,omitempty"`
}

// UIConfig holds display preferences.
type UIConfig struct {
	Hubs          string              `yaml:"hubs,omitempty"`
	HighlightFor  string              `yaml:"highlight_for,omitempty"` // jump highlight duration
	Mouse         *bool               `yaml:"mouse,omitempty"`
	Keys          map[string][]string `yaml:"keys,omitempty"` // action -> keys
	ShowConfirmed bool                `yaml:"show_confirmed,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Drive  DriveConfig  `yaml:"drive,omitempty"`
	Window WindowConfig `yaml:"window,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Drive: DriveConfig{
			Backend:      BackendDir,
			Path:         filepath.Join(DataDir(), "drive"),
			Debounce:     "50ms",
			PollInterval: "1s",
		},
		Window: WindowConfig{
			ChunkSize:   50,
			MaxRendered: 150,
			RowHeight:   1,
			RootMargin:  32,
		},
		UI: UIConfig{
			Hubs:         HubsDefault,
			HighlightFor: "2s",
		},
	}
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the XDG data directory.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", appName)
}

// ConfigPath returns the path of config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config from the XDG path and applies the environment.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, nil
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFrom reads config from path. A missing file yields the defaults.
// Fields the file leaves unset keep their defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	cfg.Drive.Path = expandHome(cfg.Drive.Path)
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from HUBTREE_DRIVE, HUBTREE_BACKEND and
// HUBTREE_HUBS.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("HUBTREE_DRIVE"); v != "" {
		c.Drive.Path = expandHome(v)
	}
	if v := os.Getenv("HUBTREE_BACKEND"); v != "" {
		c.Drive.Backend = v
	}
	if v := os.Getenv("HUBTREE_HUBS"); v != "" {
		c.UI.Hubs = v
	}
}

// Validate checks enumerations, sizes and durations.
func (c Config) Validate() error {
	switch c.Drive.Backend {
	case BackendDir, BackendSQLite, BackendMem:
	default:
		return fmt.Errorf("%w: unknown drive backend %q", ErrInvalid, c.Drive.Backend)
	}
	if !ValidHubsPolicy(c.UI.Hubs) {
		return fmt.Errorf("%w: unknown hubs policy %q", ErrInvalid, c.UI.Hubs)
	}
	w := c.Window
	if w.ChunkSize <= 0 || w.RowHeight <= 0 || w.RootMargin < 0 {
		return fmt.Errorf("%w: window sizes must be positive", ErrInvalid)
	}
	if w.MaxRendered < 2*w.ChunkSize {
		return fmt.Errorf("%w: max_rendered %d is below twice chunk_size %d", ErrInvalid, w.MaxRendered, w.ChunkSize)
	}
	for name, v := range map[string]string{
		"drive.debounce":      c.Drive.Debounce,
		"drive.poll_interval": c.Drive.PollInterval,
		"ui.highlight_for":    c.UI.HighlightFor,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
		}
	}
	return nil
}

// ValidHubsPolicy reports whether p is a known hubs policy.
func ValidHubsPolicy(p string) bool {
	switch p {
	case HubsDefault, HubsShow, HubsHide:
		return true
	}
	return false
}

// DebounceDuration returns the drive debounce, or its default.
func (c Config) DebounceDuration() time.Duration {
	return parseOr(c.Drive.Debounce, 50*time.Millisecond)
}

// PollDuration returns the drive poll interval, or its default.
func (c Config) PollDuration() time.Duration {
	return parseOr(c.Drive.PollInterval, time.Second)
}

// HighlightDuration returns how long a jump target stays highlighted.
func (c Config) HighlightDuration() time.Duration {
	return parseOr(c.UI.HighlightFor, 2*time.Second)
}

// MouseEnabled reports whether mouse support is on. It defaults to true.
func (c Config) MouseEnabled() bool {
	return c.UI.Mouse == nil || *c.UI.Mouse
}

func parseOr(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Save writes cfg to the XDG path.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes cfg to path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
