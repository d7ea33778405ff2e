package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/hubtree/pkg/debug"
	"github.com/vanderheijden86/hubtree/pkg/ui"
)

func runTUI(cmd *cobra.Command, flags rootFlags) error {
	// The alt screen owns the terminal; logs go to HUBTREE_LOG or nowhere.
	if path := os.Getenv("HUBTREE_LOG"); path != "" {
		f, err := tea.LogToFile(path, "hubtree")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		debug.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	d, err := openDrive(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	m := ui.NewModel(d, cfg, ui.DefaultTheme(lipgloss.DefaultRenderer()))
	defer m.Stop()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}
	if cfg.MouseEnabled() {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return runTUIProgram(cmd.Context(), m, opts...)
}

func runTUIProgram(ctx context.Context, m ui.Model, opts ...tea.ProgramOption) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, append(opts, tea.WithContext(ctx))...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM; a second signal or a stuck
	// program is killed.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for scripted runs: HUBTREE_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("HUBTREE_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}
				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
