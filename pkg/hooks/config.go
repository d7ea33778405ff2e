// Package hooks runs user commands around `hubtree export`.
//
// Hooks live in hooks.yaml next to config.yaml:
//
//	hooks:
//	  pre-export:
//	    - name: lint
//	      command: hubtree check
//	  post-export:
//	    - command: cp "$HUBTREE_EXPORT_PATH" ~/Sync/
//
// A failing pre-export hook cancels the export; post-export failures are
// only logged unless on_error says otherwise.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HookPhase says when a hook runs.
type HookPhase string

const (
	PreExport  HookPhase = "pre-export"
	PostExport HookPhase = "post-export"
)

// On-error policies.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// DefaultTimeout bounds a hook that sets no timeout.
const DefaultTimeout = 30 * time.Second

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"` // run with sh -c
	Timeout time.Duration     `yaml:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty"` // fail or continue
}

// Config is the parsed hooks.yaml.
type Config struct {
	Hooks struct {
		PreExport  []Hook `yaml:"pre-export,omitempty"`
		PostExport []Hook `yaml:"post-export,omitempty"`
	} `yaml:"hooks"`
}

// Phase returns the hooks of phase.
func (c *Config) Phase(phase HookPhase) []Hook {
	if c == nil {
		return nil
	}
	switch phase {
	case PreExport:
		return c.Hooks.PreExport
	case PostExport:
		return c.Hooks.PostExport
	}
	return nil
}

// Empty reports whether no hook is configured.
func (c *Config) Empty() bool {
	return len(c.Phase(PreExport)) == 0 && len(c.Phase(PostExport)) == 0
}

// ExportContext describes the export to the hooks through HUBTREE_*
// environment variables.
type ExportContext struct {
	ExportPath   string
	ExportFormat string
	RowCount     int
	Timestamp    time.Time
}

// ToEnv returns the context as environment assignments.
func (c ExportContext) ToEnv() []string {
	return []string{
		"HUBTREE_EXPORT_PATH=" + c.ExportPath,
		"HUBTREE_EXPORT_FORMAT=" + c.ExportFormat,
		fmt.Sprintf("HUBTREE_ROW_COUNT=%d", c.RowCount),
		"HUBTREE_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Load reads dir/hooks.yaml. A missing file is an empty config. The
// returned warnings name hooks that were dropped.
func Load(dir string) (*Config, []string, error) {
	path := filepath.Join(dir, "hooks.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil, nil
		}
		return nil, nil, fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	var warnings []string
	cfg.Hooks.PreExport = normalize(cfg.Hooks.PreExport, PreExport, &warnings)
	cfg.Hooks.PostExport = normalize(cfg.Hooks.PostExport, PostExport, &warnings)
	return &cfg, warnings, nil
}

// normalize fills in defaults and drops hooks without a command.
func normalize(hooks []Hook, phase HookPhase, warnings *[]string) []Hook {
	out := make([]Hook, 0, len(hooks))
	for i, h := range hooks {
		if strings.TrimSpace(h.Command) == "" {
			*warnings = append(*warnings, fmt.Sprintf("%s hook %d has no command, skipping", phase, i+1))
			continue
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		if h.Timeout <= 0 {
			h.Timeout = DefaultTimeout
		}
		switch h.OnError {
		case OnErrorFail, OnErrorContinue:
		case "":
			h.OnError = OnErrorContinue
			if phase == PreExport {
				h.OnError = OnErrorFail
			}
		default:
			*warnings = append(*warnings, fmt.Sprintf("%s: unknown on_error %q, using %s", h.Name, h.OnError, OnErrorFail))
			h.OnError = OnErrorFail
		}
		out = append(out, h)
	}
	return out
}
