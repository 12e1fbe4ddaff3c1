package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesCategory(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Disable()

	Log("audio", "circle %d failed", 7)
	Warn("sched", "no sequence to play")

	got := buf.String()
	if !strings.Contains(got, "audio") || !strings.Contains(got, "circle 7 failed") {
		t.Fatalf("missing audio line in %q", got)
	}
	if !strings.Contains(got, "WARN no sequence to play") {
		t.Fatalf("missing warning in %q", got)
	}
}

func TestDisabledLogIsSilent(t *testing.T) {
	Disable()
	Log("audio", "dropped") // must not panic with no output
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Disable()

	for i := 0; i < 9; i++ {
		LogEvery(3, "led", "frame")
	}
	if n := strings.Count(buf.String(), "frame (every 3"); n != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", n, buf.String())
	}
}

func TestEnableCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	Log("test", "hello")
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log file missing line: %q", data)
	}
}
