package drive

import (
	"context"
	"testing"

	"github.com/vanderheijden86/hubtree/pkg/config"
	"github.com/vanderheijden86/hubtree/pkg/graph"
)

func TestDefaults(t *testing.T) {
	docs := Defaults()
	for _, p := range []string{
		"entries/entries.json",
		"style/theme.css",
		"runtime/instance_states.json",
		"runtime/view_order_tracking.json",
		"mode/current_mode.json",
		"mode/select_between_enabled.json",
		"flags/hubs.json",
	} {
		if _, ok := docs[p]; !ok {
			t.Errorf("missing default %s", p)
		}
	}

	entries, err := graph.Parse(docs["entries/entries.json"])
	if err != nil {
		t.Fatalf("sample entries: %v", err)
	}
	if r := graph.Check(entries); !r.OK() {
		t.Errorf("sample entries have problems:\n%s", r)
	}
}

func TestSeedKeepsExisting(t *testing.T) {
	ctx := context.Background()
	d := NewMemDrive(map[string][]byte{"flags/hubs.json": []byte("false")})
	defer d.Close()

	written, err := Seed(ctx, d, Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != len(Defaults())-1 {
		t.Errorf("wrote %d documents, want %d", len(written), len(Defaults())-1)
	}
	raw, _ := d.Get(ctx, "flags/hubs.json")
	if string(raw) != "false" {
		t.Errorf("Seed overwrote hubs.json with %q", raw)
	}

	again, err := Seed(ctx, d, Defaults())
	if err != nil || len(again) != 0 {
		t.Errorf("second seed wrote %v, %v", again, err)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	d := NewMemDrive(Defaults())
	defer d.Close()
	d.Put(ctx, "runtime/vertical_scroll_value.json", []byte("40"), Origin{})
	d.Put(ctx, "flags/hubs.json", []byte("false"), Origin{})

	if _, err := Reset(ctx, d, Origin{}); err != nil {
		t.Fatal(err)
	}
	raw, _ := d.Get(ctx, "runtime/vertical_scroll_value.json")
	if string(raw) != "0\n" {
		t.Errorf("scroll = %q", raw)
	}
	raw, _ = d.Get(ctx, "flags/hubs.json")
	if string(raw) != "false" {
		t.Errorf("reset touched flags: %q", raw)
	}
}

func TestOpen(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Drive.Backend = config.BackendMem
	d, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if _, err := d.Get(context.Background(), "flags/hubs.json"); err != nil {
		t.Errorf("mem drive not seeded: %v", err)
	}

	cfg.Drive.Backend = config.BackendSQLite
	cfg.Drive.Path = t.TempDir()
	s, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	cfg.Drive.Backend = "bogus"
	if _, err := Open(cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}
