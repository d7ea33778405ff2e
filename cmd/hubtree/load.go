package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/vanderheijden86/hubtree/internal/drive"
	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/graph"
	"github.com/vanderheijden86/hubtree/pkg/ui"
	"github.com/vanderheijden86/hubtree/pkg/view"

	json "github.com/goccy/go-json"
)

const (
	docEntries        = "entries/entries.json"
	docInstanceStates = "runtime/instance_states.json"
	docHubs           = "flags/hubs.json"
)

// loadConfig reads the config file and applies the environment, then the
// flags that were set.
func loadConfig(flags rootFlags) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFrom(flags.configPath)
		cfg.ApplyEnv()
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}
	if flags.drivePath != "" {
		cfg.Drive.Path = flags.drivePath
	}
	if flags.backend != "" {
		cfg.Drive.Backend = flags.backend
	}
	if flags.hubs != "" {
		cfg.UI.Hubs = flags.hubs
	}
	if flags.noMouse {
		off := false
		cfg.UI.Mouse = &off
	}
	return cfg, cfg.Validate()
}

// openDrive opens the configured drive and writes any missing default
// documents.
func openDrive(ctx context.Context, cfg config.Config) (drive.Drive, error) {
	d, err := drive.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening drive: %w", err)
	}
	written, err := drive.Seed(ctx, d, drive.Defaults())
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("seeding drive: %w", err)
	}
	if len(written) > 0 {
		log.Printf("seeded %d default documents", len(written))
	}
	return d, nil
}

// snapshot is the default view as the drive currently describes it.
type snapshot struct {
	Entries graph.Entries
	States  view.StateMap
	Hubs    string
	Rows    []view.Row
	Tracker *view.Tracker
}

func loadSnapshot(ctx context.Context, d drive.Drive, cfg config.Config) (snapshot, error) {
	batch := ui.ReadBatch(ctx, d, drive.Group([]string{docEntries, docInstanceStates, docHubs}, drive.Origin{}))

	raw, ok := batch.Docs[docEntries]
	if !ok {
		return snapshot{}, fmt.Errorf("%w: %s", drive.ErrNotFound, docEntries)
	}
	entries, err := graph.Parse(raw)
	if err != nil {
		return snapshot{}, err
	}

	s := snapshot{Entries: entries, States: make(view.StateMap), Hubs: cfg.UI.Hubs}
	if raw, ok := batch.Docs[docInstanceStates]; ok {
		var states view.StateMap
		if err := json.Unmarshal(raw, &states); err != nil {
			log.Printf("warning: %s: %v", docInstanceStates, err)
		} else if states != nil {
			s.States = states
		}
	}
	if raw, ok := batch.Docs[docHubs]; ok {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil && config.ValidHubsPolicy(fmt.Sprint(v)) {
			s.Hubs = fmt.Sprint(v)
		}
	}
	if entries.HasRoot() {
		s.States.EnsureRoot()
	}

	s.Rows = view.Build(entries, s.States, view.BuildOptions{
		SuppressDuplicateHubs: s.Hubs == config.HubsHide,
	})
	if s.Hubs == config.HubsDefault {
		s.Tracker = view.NewTracker()
		s.Tracker.Rebuild(s.Rows)
	}
	return s, nil
}

// withDrive loads the config, opens the drive and calls fn.
func withDrive(ctx context.Context, flags rootFlags, fn func(config.Config, drive.Drive) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	d, err := openDrive(ctx, cfg)
	if err != nil {
		return err
	}
	return errors.Join(fn(cfg, d), d.Close())
}
