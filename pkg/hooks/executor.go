package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/hubtree/pkg/debug"
)

// Result records one hook run.
type Result struct {
	Hook     Hook
	Phase    HookPhase
	Output   string
	Err      error
	Duration time.Duration
}

// Executor runs the hooks of a config for one export.
type Executor struct {
	config  *Config
	export  ExportContext
	results []Result
}

// NewExecutor returns an executor for cfg.
func NewExecutor(cfg *Config, export ExportContext) *Executor {
	return &Executor{config: cfg, export: export}
}

// Run runs the hooks of phase in order. It stops at the first failing
// hook whose policy is fail and returns its error.
func (e *Executor) Run(ctx context.Context, phase HookPhase) error {
	for _, h := range e.config.Phase(phase) {
		r := e.run(ctx, h, phase)
		e.results = append(e.results, r)
		if r.Err == nil {
			continue
		}
		if h.OnError == OnErrorFail {
			return fmt.Errorf("%s hook %q: %w", phase, h.Name, r.Err)
		}
		log.Printf("warning: %s hook %q: %v", phase, h.Name, r.Err)
	}
	return nil
}

func (e *Executor) run(ctx context.Context, h Hook, phase HookPhase) Result {
	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	cmd.Env = append(os.Environ(), e.export.ToEnv()...)
	keys := make([]string, 0, len(h.Env))
	for k := range h.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, k+"="+h.Env[k])
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	// A killed shell can leave children holding the output pipe.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	r := Result{Hook: h, Phase: phase, Output: strings.TrimSpace(out.String()), Duration: time.Since(start)}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s", h.Timeout)
	}
	r.Err = err
	debug.Log("hook %s (%s) finished in %s: %v", h.Name, phase, r.Duration, err)
	return r
}

// Results returns the runs so far.
func (e *Executor) Results() []Result {
	return e.results
}

// Summary is a one-line account of the runs.
func (e *Executor) Summary() string {
	failed := 0
	for _, r := range e.results {
		if r.Err != nil {
			failed++
		}
	}
	return fmt.Sprintf("%d hooks run, %d failed", len(e.results), failed)
}

// RunHooks loads the hooks in dir and returns an executor for them, or
// nil when noHooks is set or nothing is configured.
func RunHooks(dir string, export ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	cfg, warnings, err := Load(dir)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Printf("warning: %s", w)
	}
	if cfg.Empty() {
		return nil, nil
	}
	return NewExecutor(cfg, export), nil
}
