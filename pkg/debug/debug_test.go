package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetEnabled(false)

	Log("hidden %d", 1)
	LogTiming("hidden", time.Second)
	LogEnterExit("hidden")()
	Dump("hidden", 1)
	Section("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestEnabledWrites(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetEnabled(true)
	defer SetEnabled(false)

	Log("rows=%d", 3)
	LogIf(false, "skipped")
	LogIf(true, "kept")
	LogEnterExit("rebuild")()
	Section("batch")

	out := buf.String()
	for _, want := range []string{"rows=3", "kept", "-> rebuild", "<- rebuild", "=== batch ===", prefix} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Error("LogIf(false) wrote output")
	}
}
