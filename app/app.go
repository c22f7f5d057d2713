// Package app wires a board into the render loop and owns the boot sequence.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"touchdrive/flush"
	"touchdrive/hal"
	"touchdrive/input"
	"touchdrive/internal/buildinfo"
	"touchdrive/internal/logging"
	"touchdrive/pacer"
	"touchdrive/runloop"
	"touchdrive/ui"
)

var ErrPanelSize = errors.New("app: panel size mismatch")

// System is a fully wired firmware instance.
type System struct {
	h     hal.HAL
	cfg   Config
	log   *slog.Logger
	rt    *ui.Runtime
	touch *input.Adapter
	flush *flush.Adapter
	pacer *pacer.Pacer
	loop  *runloop.Scheduler
	scene *scene
}

// New brings up the backlight and builds the loop for h.
func New(h hal.HAL, cfg Config) (*System, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger
	if log == nil {
		log = logging.New(logging.NewLineWriter(h.Logger()), cfg.LogLevel)
	}

	bootDiagStart(h.Logger())
	bootStep("panel")
	panel := h.Panel()
	if panel == nil {
		return nil, errors.New("app: board has no panel")
	}
	w, ht := panel.Size()
	if (cfg.Width != 0 && cfg.Width != w) || (cfg.Height != 0 && cfg.Height != ht) {
		return nil, fmt.Errorf("%w: want %dx%d, panel is %dx%d", ErrPanelSize, cfg.Width, cfg.Height, w, ht)
	}
	cfg.Width, cfg.Height = w, ht

	log.Info("touchdrive starting",
		"version", buildinfo.Long(),
		"panel", fmt.Sprintf("%dx%d", w, ht),
	)

	bootStep("backlight")
	if bl := h.Backlight(); bl != nil {
		if err := bl.SetBrightness(cfg.Backlight); err != nil {
			if errors.Is(err, hal.ErrNotImplemented) {
				log.Debug("backlight not controllable")
			} else {
				log.Warn("backlight setup failed", "error", err)
			}
		}
	}

	bootStep("runtime")
	var flushOpts []flush.Option
	if cfg.BatchHook != nil {
		flushOpts = append(flushOpts, flush.WithBatchHook(cfg.BatchHook))
	}
	s := &System{
		h:     h,
		cfg:   cfg,
		log:   log,
		rt:    ui.New(),
		touch: input.New(h.Touch(), w, ht),
		flush: flush.New(panel, cfg.BatchLines, flushOpts...),
	}
	s.pacer = pacer.New(cfg.Clock, cfg.FrameDelay, s.rt.AdvanceClock)
	sc, err := newScene(s.rt)
	if err != nil {
		return nil, err
	}
	s.scene = sc

	loop, err := runloop.New(runloop.Config{
		Width:            w,
		Height:           ht,
		BufferLines:      cfg.BufferLines,
		DiagnosticsEvery: cfg.DiagnosticsEvery,
		MaxCycles:        cfg.MaxCycles,
		Logger:           log,
		Hooks:            cfg.Hooks,
	}, s.touch, s.flush, s.pacer, s.rt, s.scene)
	if err != nil {
		return nil, err
	}
	s.loop = loop
	bootStep("ready")
	return s, nil
}

// Run drives the loop until it stops. After a bus fault the panel still works, so
// the fault is drawn on screen before Run returns it.
func (s *System) Run(ctx context.Context) error {
	err := s.loop.Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var bf *hal.BusFault
	if errors.As(err, &bf) {
		if ferr := s.drawFault(err); ferr != nil {
			s.log.Error("fault screen failed", "error", ferr)
		}
	}
	return err
}

func (s *System) Scheduler() *runloop.Scheduler { return s.loop }
func (s *System) Runtime() *ui.Runtime          { return s.rt }
func (s *System) Logger() *slog.Logger          { return s.log }

// Run boots h with the default config and never returns. The board's panel
// decides the screen size.
func Run(h hal.HAL) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 0, 0
	s, err := New(h, cfg)
	if err != nil {
		h.Logger().WriteLineString("touchdrive: boot failed: " + err.Error())
		select {}
	}
	if err := s.Run(context.Background()); err != nil {
		s.log.Error("halted", "error", err)
	}
	select {}
}
