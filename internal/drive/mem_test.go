package drive

import (
	"context"
	"testing"
)

func TestMemDrive(t *testing.T) {
	d := NewMemDrive(nil)
	defer d.Close()
	testDriveContract(t, d)
}

func TestMemDriveCopies(t *testing.T) {
	src := []byte("1")
	d := NewMemDrive(map[string][]byte{"runtime/node_height.json": src})
	src[0] = '9'

	raw, _ := d.Get(context.Background(), "runtime/node_height.json")
	if string(raw) != "1" {
		t.Errorf("drive aliased its input: %q", raw)
	}
	raw[0] = '7'
	again, _ := d.Get(context.Background(), "runtime/node_height.json")
	if string(again) != "1" {
		t.Errorf("Get aliased storage: %q", again)
	}
}

func TestMemDriveCloseEndsWatch(t *testing.T) {
	d := NewMemDrive(nil)
	ch, err := d.Watch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	<-ch
	d.Close()
	if _, ok := <-ch; ok {
		t.Error("expected closed channel")
	}
	if _, err := d.Watch(context.Background()); err == nil {
		t.Error("Watch after Close should fail")
	}
}
