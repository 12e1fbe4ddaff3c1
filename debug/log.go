// Package debug writes category-tagged diagnostic lines to a file. The
// terminal UI owns stdout, so nothing here ever prints to it.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type level string

const (
	levelInfo level = ""
	levelWarn level = "WARN "
)

// sink is the process-wide destination. A nil w means logging is off.
type sink struct {
	sync.Mutex
	w      io.Writer
	f      *os.File
	counts map[string]int
}

var std = &sink{counts: map[string]int{}}

func (s *sink) line(category string, lv level, msg string) {
	if s.w == nil {
		return
	}
	fmt.Fprintf(s.w, "%s %-9s %s%s\n", time.Now().Format("15:04:05.000"), category, lv, msg)
	if s.f != nil {
		s.f.Sync()
	}
}

func (s *sink) swap(w io.Writer, f *os.File) {
	if s.f != nil {
		s.f.Close()
	}
	s.w, s.f = w, f
	clear(s.counts)
}

// DefaultPath is debug.log next to config.json.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "glossolalia", "debug.log")
}

// Enable truncates path and logs to it. A second call while enabled is a
// no-op.
func Enable(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	std.Lock()
	defer std.Unlock()
	if std.w != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("debug log dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("debug log: %w", err)
	}
	std.swap(f, f)
	std.line("debug", levelInfo, "logging to "+path)
	return nil
}

// SetOutput sends log lines to w. Passing nil disables logging.
func SetOutput(w io.Writer) {
	std.Lock()
	std.swap(w, nil)
	std.Unlock()
}

// Disable stops logging and closes the log file.
func Disable() { SetOutput(nil) }

// Log writes one line under category.
func Log(category, format string, args ...any) {
	logf(category, levelInfo, format, args...)
}

// Warn marks a contained failure: the caller skips the item and carries on.
func Warn(category, format string, args ...any) {
	logf(category, levelWarn, format, args...)
}

func logf(category string, lv level, format string, args ...any) {
	std.Lock()
	defer std.Unlock()
	if std.w != nil {
		std.line(category, lv, fmt.Sprintf(format, args...))
	}
}

// LogEvery logs the nth, 2nth, ... call with the same category and format.
// Use it on per-frame paths.
func LogEvery(n int, category, format string, args ...any) {
	if n < 1 {
		n = 1
	}
	std.Lock()
	defer std.Unlock()
	if std.w == nil {
		return
	}
	key := category + "\x00" + format
	std.counts[key]++
	if c := std.counts[key]; c%n == 0 {
		std.line(category, levelInfo, fmt.Sprintf(format, args...)+fmt.Sprintf(" (every %d, count=%d)", n, c))
	}
}
