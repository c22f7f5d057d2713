// Package runloop drives the cooperative render loop.
//
// One Scheduler owns the touch adapter, the flush adapter and the pacer. Every
// cycle runs the same five steps in the same order: read touch, run the runtime
// input pipeline, advance the animation, let the runtime flush its pending work,
// then pace. A touch or panel fault ends the loop for good.
package runloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"touchdrive/flush"
	"touchdrive/input"
	"touchdrive/internal/logging"
	"touchdrive/pacer"
	"touchdrive/ui"
)

// DefaultDiagnosticsEvery is the number of cycles between memory snapshots.
const DefaultDiagnosticsEvery = 270

var (
	ErrNotRunning = errors.New("runloop: scheduler not running")
	ErrConfig     = errors.New("runloop: invalid config")
)

// TouchInput is the touch side of the loop.
type TouchInput interface {
	Start() error
	Read() (input.PointerEvent, error)
}

// Runtime is the rendering runtime capability the loop drives.
type Runtime interface {
	RegisterDisplay(bufferPixels, width, height int, flush ui.FlushFunc) error
	RegisterPointerInput(read ui.PointerFunc)
	ProcessInput()
	AdvancePendingWork() error
	AdvanceClock(d time.Duration)
}

// Scene applies the animation state to the widgets on screen.
type Scene interface {
	Animate(s AnimationState) error
}

// SceneFunc adapts a function to Scene.
type SceneFunc func(s AnimationState) error

func (f SceneFunc) Animate(s AnimationState) error { return f(s) }

type State uint8

const (
	Idle State = iota
	Running
	Faulted
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Faulted:
		return "faulted"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// CycleInfo describes a completed cycle.
type CycleInfo struct {
	Cycle     uint64
	Event     input.PointerEvent
	Animation AnimationState
	Elapsed   time.Duration
}

// Diagnostics is a memory snapshot taken by the loop.
type Diagnostics struct {
	Label      string
	Cycle      uint64
	Alloc      uint64
	TotalAlloc uint64
	Sys        uint64
	HeapInuse  uint64
	Mallocs    uint64
	Frees      uint64
	UI         *ui.Monitor
}

// Hooks observe the loop. Any of them may be nil. They run on the loop goroutine.
type Hooks struct {
	OnCycle       func(CycleInfo)
	OnPointer     func(input.PointerEvent)
	OnFault       func(cycle uint64, err error)
	OnDiagnostics func(Diagnostics)
}

type Config struct {
	Width  int
	Height int
	// BufferLines sizes the runtime draw buffer as Width*BufferLines pixels.
	BufferLines      int
	DiagnosticsEvery int
	// MaxCycles stops Run after that many cycles. Zero runs until ctx is done.
	MaxCycles uint64
	Logger    *slog.Logger
	Hooks     Hooks
}

type Scheduler struct {
	cfg   Config
	log   *slog.Logger
	touch TouchInput
	flush *flush.Adapter
	pacer *pacer.Pacer
	rt    Runtime
	scene Scene

	state  State
	err    error
	cycles uint64
	anim   AnimationState
	event  input.PointerEvent
	reads  uint64
}

// New wires touch, panel and pacer into rt. The runtime's display flushes through
// fl and its pointer input reads the event polled in the current cycle.
func New(cfg Config, touch TouchInput, fl *flush.Adapter, p *pacer.Pacer, rt Runtime, scene Scene) (*Scheduler, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.BufferLines <= 0 {
		return nil, fmt.Errorf("%w: %dx%d, %d buffer lines", ErrConfig, cfg.Width, cfg.Height, cfg.BufferLines)
	}
	if touch == nil || fl == nil || p == nil || rt == nil {
		return nil, fmt.Errorf("%w: missing touch, flush, pacer or runtime", ErrConfig)
	}
	if cfg.DiagnosticsEvery <= 0 {
		cfg.DiagnosticsEvery = DefaultDiagnosticsEvery
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if scene == nil {
		scene = SceneFunc(func(AnimationState) error { return nil })
	}

	s := &Scheduler{
		cfg:   cfg,
		log:   cfg.Logger.With("component", "runloop"),
		touch: touch,
		flush: fl,
		pacer: p,
		rt:    rt,
		scene: scene,
		anim:  NewAnimation(),
		event: input.ReleasedEvent(),
	}
	if err := rt.RegisterDisplay(cfg.Width*cfg.BufferLines, cfg.Width, cfg.Height, fl.Flush); err != nil {
		return nil, fmt.Errorf("runloop: register display: %w", err)
	}
	rt.RegisterPointerInput(s.pointer)
	return s, nil
}

func (s *Scheduler) pointer() input.PointerEvent {
	s.reads++
	return s.event
}

// Start resets the touch controller and takes the "init" snapshot.
func (s *Scheduler) Start() error {
	switch s.state {
	case Running:
		return nil
	case Faulted:
		return s.err
	case Stopped:
		return ErrNotRunning
	}
	if err := s.touch.Start(); err != nil {
		return s.fail(err)
	}
	s.state = Running
	s.log.Info("loop started",
		"size", fmt.Sprintf("%dx%d", s.cfg.Width, s.cfg.Height),
		"buffer_lines", s.cfg.BufferLines,
		"batch_lines", s.flush.BatchLines(),
		"delay", s.pacer.Delay(),
	)
	s.diagnostics("init")
	return nil
}

// Step runs one cycle. Any error is terminal and leaves the scheduler Faulted.
func (s *Scheduler) Step() error {
	if s.state == Faulted {
		return s.err
	}
	if s.state != Running {
		return ErrNotRunning
	}
	s.cycles++
	s.pacer.Begin()

	ev, err := s.touch.Read()
	if err != nil {
		return s.fail(err)
	}
	s.event = ev
	if s.cfg.Hooks.OnPointer != nil {
		s.cfg.Hooks.OnPointer(ev)
	}
	s.rt.ProcessInput()

	s.anim.Step()
	if err := s.scene.Animate(s.anim); err != nil {
		return s.fail(fmt.Errorf("runloop: animate: %w", err))
	}

	if err := s.rt.AdvancePendingWork(); err != nil {
		return s.fail(err)
	}

	elapsed := s.pacer.End()
	if s.cfg.Hooks.OnCycle != nil {
		s.cfg.Hooks.OnCycle(CycleInfo{Cycle: s.cycles, Event: ev, Animation: s.anim, Elapsed: elapsed})
	}
	if s.cycles%uint64(s.cfg.DiagnosticsEvery) == 0 {
		s.diagnostics("periodic")
	}
	return nil
}

// Run starts the loop if needed and steps until a fault, ctx is done or
// MaxCycles is reached. A fault is returned as is. Cancellation returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			s.stop("context done")
			return ctx.Err()
		default:
		}
		if s.cfg.MaxCycles > 0 && s.cycles >= s.cfg.MaxCycles {
			s.stop("cycle limit")
			return nil
		}
		if err := s.Step(); err != nil {
			return err
		}
	}
}

func (s *Scheduler) stop(reason string) {
	s.state = Stopped
	s.log.Info("loop stopped", "reason", reason, "cycles", s.cycles)
}

func (s *Scheduler) fail(err error) error {
	s.state = Faulted
	s.err = err
	s.log.Error("loop faulted", "cycle", s.cycles, "error", err)
	if s.cfg.Hooks.OnFault != nil {
		s.cfg.Hooks.OnFault(s.cycles, err)
	}
	return err
}

func (s *Scheduler) diagnostics(label string) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	d := Diagnostics{
		Label:      label,
		Cycle:      s.cycles,
		Alloc:      ms.Alloc,
		TotalAlloc: ms.TotalAlloc,
		Sys:        ms.Sys,
		HeapInuse:  ms.HeapInuse,
		Mallocs:    ms.Mallocs,
		Frees:      ms.Frees,
	}
	attrs := []any{
		"label", label,
		"cycle", s.cycles,
		"alloc", ms.Alloc,
		"total_alloc", ms.TotalAlloc,
		"sys", ms.Sys,
		"heap_inuse", ms.HeapInuse,
		"mallocs", ms.Mallocs,
		"frees", ms.Frees,
	}
	if m, ok := s.rt.(interface{ Monitor() ui.Monitor }); ok {
		mon := m.Monitor()
		d.UI = &mon
		attrs = append(attrs,
			"ui_widgets", mon.Widgets,
			"ui_buffer", mon.DrawBufferBytes,
			"ui_dirty_max", mon.MaxDirtyAreas,
			"ui_flushes", mon.FlushCalls,
		)
	}
	s.log.Info("meminfo", attrs...)
	if s.cfg.Hooks.OnDiagnostics != nil {
		s.cfg.Hooks.OnDiagnostics(d)
	}
}

func (s *Scheduler) State() State { return s.state }

// Err returns the fault that stopped the loop.
func (s *Scheduler) Err() error { return s.err }

func (s *Scheduler) Cycles() uint64 { return s.cycles }

func (s *Scheduler) Animation() AnimationState { return s.anim }

// PointerReads reports how often the runtime read the pointer input.
func (s *Scheduler) PointerReads() uint64 { return s.reads }
