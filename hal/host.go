//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// HostConfig selects the simulated board used on a desktop host.
type HostConfig struct {
	Width  int
	Height int

	// TouchScript replays a YAML touch script instead of live input.
	TouchScript string
	// TouchSerial reads touches from a serial port, e.g. a real controller
	// bridged by a microcontroller.
	TouchSerial string
	SerialBaud  int

	// Log receives log lines. Defaults to stdout.
	Log io.Writer
}

// Host is the desktop board: an in-memory panel and a touch source chosen by
// HostConfig. Pointer input from the window lands in a single-slot cell.
type Host struct {
	logger  *hostLogger
	bl      *hostBacklight
	panel   *hostPanel
	pointer *pointerCell
	touch   TouchController
	closer  io.Closer
}

// NewHost builds a host board. Close releases the touch source.
func NewHost(cfg HostConfig) (*Host, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("hal: invalid panel size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Log == nil {
		cfg.Log = os.Stdout
	}
	logger := &hostLogger{w: cfg.Log}
	h := &Host{
		logger:  logger,
		bl:      &hostBacklight{logger: logger},
		panel:   newHostPanel(cfg.Width, cfg.Height),
		pointer: &pointerCell{},
	}

	switch {
	case cfg.TouchScript != "":
		script, err := LoadTouchScript(cfg.TouchScript)
		if err != nil {
			return nil, err
		}
		h.touch = script
	case cfg.TouchSerial != "":
		st, err := OpenSerialTouch(cfg.TouchSerial, cfg.SerialBaud)
		if err != nil {
			return nil, err
		}
		h.touch = st
		h.closer = st
	default:
		h.touch = cellTouch{cell: h.pointer}
	}
	return h, nil
}

func (h *Host) Logger() Logger         { return h.logger }
func (h *Host) Backlight() Backlight   { return h.bl }
func (h *Host) Panel() Panel           { return h.panel }
func (h *Host) Touch() TouchController { return h.touch }

func (h *Host) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostBacklight struct {
	logger  Logger
	percent uint8
}

func (b *hostBacklight) SetBrightness(percent uint8) error {
	if percent > 100 {
		percent = 100
	}
	b.percent = percent
	b.logger.WriteLineString(fmt.Sprintf("backlight: %d%%", percent))
	return nil
}
