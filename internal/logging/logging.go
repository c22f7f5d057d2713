// Package logging builds the slog loggers used across the firmware.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"touchdrive/hal"
)

// New creates a text logger writing to w. The "error" key is standardized to "err".
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug, info, warn and error to their slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// LineWriter forwards complete lines to a board logger. A trailing partial line
// is held until its newline arrives.
type LineWriter struct {
	mu  sync.Mutex
	out hal.Logger
	buf []byte
}

func NewLineWriter(out hal.Logger) *LineWriter {
	return &LineWriter{out: out}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	start := 0
	for {
		i := bytes.IndexByte(w.buf[start:], '\n')
		if i < 0 {
			break
		}
		w.out.WriteLineBytes(w.buf[start : start+i])
		start += i + 1
	}
	w.buf = w.buf[:copy(w.buf, w.buf[start:])]
	return len(p), nil
}
