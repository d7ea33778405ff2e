package drive

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T, path string) *SQLiteDrive {
	t.Helper()
	d, err := OpenSQLite(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSQLiteDrive(t *testing.T) {
	testDriveContract(t, openTestSQLite(t, filepath.Join(t.TempDir(), "drive.db")))
}

func TestSQLiteDriveSharedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drive.db")
	a := openTestSQLite(t, path)
	b := openTestSQLite(t, path)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := a.Watch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	nextBatch(t, ch, 5*time.Second)

	origin := Origin{Writer: "other", Version: 2}
	if err := b.Put(ctx, "flags/hubs.json", []byte(`false`), origin); err != nil {
		t.Fatal(err)
	}
	if got := waitFor(t, ch, "flags/hubs.json", 5*time.Second); got != origin {
		t.Errorf("origin = %+v, want %+v", got, origin)
	}
	raw, err := a.Get(ctx, "flags/hubs.json")
	if err != nil || string(raw) != "false" {
		t.Errorf("Get = %q, %v", raw, err)
	}
}

func TestSQLiteDriveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drive.db")
	d, err := OpenSQLite(path, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	d.Put(ctx, "runtime/node_height.json", []byte("2"), Origin{})
	d.Close()

	again := openTestSQLite(t, path)
	raw, err := again.Get(ctx, "runtime/node_height.json")
	if err != nil || string(raw) != "2" {
		t.Errorf("Get after reopen = %q, %v", raw, err)
	}
}
