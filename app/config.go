package app

import (
	"log/slog"
	"time"

	"touchdrive/flush"
	"touchdrive/hal"
	"touchdrive/pacer"
	"touchdrive/runloop"
)

// Config controls the firmware wiring. Zero buffer, batch and diagnostics sizes
// take the DefaultConfig values. A zero FrameDelay disables pacing.
type Config struct {
	// Width and Height are the expected panel size. Zero accepts whatever the
	// panel reports.
	Width  int
	Height int

	BufferLines      int
	BatchLines       int
	FrameDelay       time.Duration
	DiagnosticsEvery int
	MaxCycles        uint64

	// Backlight is the boot brightness in percent.
	Backlight uint8

	LogLevel slog.Level
	Logger   *slog.Logger
	Clock    pacer.Clock

	Hooks     runloop.Hooks
	BatchHook func(hal.Region)
}

func DefaultConfig() Config {
	return Config{
		Width:            800,
		Height:           480,
		BufferLines:      12,
		BatchLines:       flush.DefaultBatchLines,
		FrameDelay:       pacer.DefaultDelay,
		DiagnosticsEvery: runloop.DefaultDiagnosticsEvery,
		Backlight:        50,
		LogLevel:         slog.LevelInfo,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BufferLines <= 0 {
		c.BufferLines = d.BufferLines
	}
	if c.BatchLines <= 0 {
		c.BatchLines = d.BatchLines
	}
	if c.FrameDelay < 0 {
		c.FrameDelay = 0
	}
	if c.DiagnosticsEvery <= 0 {
		c.DiagnosticsEvery = d.DiagnosticsEvery
	}
	if c.Backlight > 100 {
		c.Backlight = 100
	}
	if c.Clock == nil {
		c.Clock = pacer.SystemClock()
	}
	return c
}
