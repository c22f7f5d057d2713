// Package ui is a small retained-mode widget runtime.
//
// Widgets mark the areas they change as dirty. Each call to AdvancePendingWork
// redraws the dirty areas into a partial draw buffer, strip by strip, and hands
// every strip to the registered flush callback. The pointer callback is read once
// per ProcessInput and drives press, long-press, release and click events. Time
// only advances through AdvanceClock.
package ui

import (
	"errors"
	"fmt"
	"time"

	"touchdrive/hal"
	"touchdrive/input"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// DefaultLongPress is the hold time before EventLongPressed.
const DefaultLongPress = 400 * time.Millisecond

var (
	ErrNoDisplay      = errors.New("ui: no display registered")
	ErrBufferTooSmall = errors.New("ui: draw buffer smaller than one row")
	ErrDisplaySize    = errors.New("ui: invalid display size")
)

// FlushFunc transfers one rendered strip to the display.
type FlushFunc func(area hal.Region, pixels []hal.Color) error

// PointerFunc returns the current pointer state.
type PointerFunc func() input.PointerEvent

// Monitor is a snapshot of the runtime's memory and work counters.
type Monitor struct {
	Widgets         int
	DrawBufferBytes int
	DirtyAreas      int
	MaxDirtyAreas   int
	Refreshes       uint64
	FlushCalls      uint64
	FlushedPixels   uint64
	PointerReads    uint64
	Tick            time.Duration
}

type pointerState struct {
	pressed bool
	long    bool
	target  Widget
	since   time.Duration
	x, y    int
}

type Runtime struct {
	width  int
	height int
	buf    []hal.Color
	flush  FlushFunc
	read   PointerFunc

	bg        hal.Color
	widgets   []Widget
	dirty     dirtyQueue
	tick      time.Duration
	longPress time.Duration
	ptr       pointerState
	font      tinyfont.Fonter

	refreshes     uint64
	flushCalls    uint64
	flushedPixels uint64
	pointerReads  uint64
}

func New() *Runtime {
	return &Runtime{
		longPress: DefaultLongPress,
		font:      &proggy.TinySZ8pt7b,
	}
}

// RegisterDisplay allocates a draw buffer of bufferPixels pixels for a width x
// height screen and schedules a full redraw.
func (r *Runtime) RegisterDisplay(bufferPixels, width, height int, flush FlushFunc) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDisplaySize, width, height)
	}
	if bufferPixels < width {
		return fmt.Errorf("%w: %d < %d", ErrBufferTooSmall, bufferPixels, width)
	}
	if flush == nil {
		return ErrNoDisplay
	}
	r.width, r.height = width, height
	r.buf = make([]hal.Color, bufferPixels)
	r.flush = flush
	r.dirty.setScreen(width, height)
	r.dirty.invalidateAll()
	return nil
}

func (r *Runtime) RegisterPointerInput(read PointerFunc) { r.read = read }

func (r *Runtime) Size() (width, height int) { return r.width, r.height }

// AdvanceClock moves the runtime clock forward by d.
func (r *Runtime) AdvanceClock(d time.Duration) {
	if d > 0 {
		r.tick += d
	}
}

func (r *Runtime) Tick() time.Duration { return r.tick }

func (r *Runtime) SetLongPressTime(d time.Duration) { r.longPress = d }

func (r *Runtime) SetBackground(c hal.Color) {
	r.bg = c
	r.dirty.invalidateAll()
}

// Invalidate marks area for redraw on the next AdvancePendingWork.
func (r *Runtime) Invalidate(area hal.Region) { r.dirty.add(area) }

func (r *Runtime) add(w Widget) {
	w.Obj().rt = r
	r.widgets = append(r.widgets, w)
}

// NewArc creates an arc on the screen with the default look.
func (r *Runtime) NewArc() *Arc {
	a := &Arc{
		bgStart:      135,
		bgEnd:        45,
		start:        135,
		end:          135,
		width:        10,
		bgColor:      hal.RGB(0x30, 0x30, 0x30),
		color:        hal.RGB(0x21, 0x96, 0xF3),
		pressedColor: hal.RGB(0x90, 0xCA, 0xF9),
	}
	a.clickable = true
	r.add(a)
	a.SetSize(150, 150)
	a.SetAlign(AlignCenter, 0, 0)
	return a
}

// NewLabel creates a label showing text in the default font.
func (r *Runtime) NewLabel(text string) *Label {
	l := &Label{font: r.font, color: hal.RGB(0xFF, 0xFF, 0xFF)}
	r.add(l)
	l.SetText(text)
	return l
}

// ProcessInput reads the pointer once and dispatches the resulting events.
func (r *Runtime) ProcessInput() {
	if r.read == nil {
		return
	}
	ev := r.read()
	r.pointerReads++

	p := &r.ptr
	switch ev.State {
	case input.Pressed:
		if !p.pressed {
			p.pressed = true
			p.long = false
			p.since = r.tick
			p.x, p.y = ev.X, ev.Y
			p.target = r.hitTest(ev.X, ev.Y)
			if p.target != nil {
				p.target.Obj().setPressed(true)
				r.send(p.target, EventPressed, ev.X, ev.Y)
			}
			return
		}
		p.x, p.y = ev.X, ev.Y
		if p.target != nil && !p.long && r.tick-p.since >= r.longPress {
			p.long = true
			r.send(p.target, EventLongPressed, ev.X, ev.Y)
		}
	case input.Released:
		if !p.pressed {
			return
		}
		p.pressed = false
		t := p.target
		p.target = nil
		if t == nil {
			return
		}
		t.Obj().setPressed(false)
		r.send(t, EventReleased, p.x, p.y)
		if !p.long && t.Obj().Area().Contains(p.x, p.y) {
			r.send(t, EventClicked, p.x, p.y)
		}
	}
}

func (r *Runtime) hitTest(x, y int) Widget {
	for i := len(r.widgets) - 1; i >= 0; i-- {
		o := r.widgets[i].Obj()
		if o.hidden || !o.clickable {
			continue
		}
		if o.Area().Contains(x, y) {
			return r.widgets[i]
		}
	}
	return nil
}

func (r *Runtime) send(w Widget, code EventCode, x, y int) {
	w.Obj().send(Event{Code: code, Target: w, X: x, Y: y, At: r.tick})
}

// AdvancePendingWork redraws every dirty area and flushes it strip by strip. A
// flush error aborts the refresh and is returned.
func (r *Runtime) AdvancePendingWork() error {
	if r.flush == nil {
		return ErrNoDisplay
	}
	areas := r.dirty.list()
	if len(areas) == 0 {
		return nil
	}
	r.refreshes++
	defer r.dirty.reset()

	for _, a := range areas {
		rows := len(r.buf) / a.Width()
		for y := a.Y1; y <= a.Y2; y += rows {
			strip := a.Rows(y, min(y+rows-1, a.Y2))
			c := NewCanvas(strip, r.buf)
			r.render(c)
			if err := r.flush(strip, c.Pixels()); err != nil {
				return fmt.Errorf("ui: flush %s: %w", strip, err)
			}
			r.flushCalls++
			r.flushedPixels += uint64(strip.Area())
		}
	}
	return nil
}

func (r *Runtime) render(c *Canvas) {
	c.Fill(r.bg)
	for _, w := range r.widgets {
		o := w.Obj()
		if o.hidden {
			continue
		}
		if _, ok := o.Area().Intersect(c.Area()); !ok {
			continue
		}
		w.Draw(c)
	}
}

func (r *Runtime) Monitor() Monitor {
	return Monitor{
		Widgets:         len(r.widgets),
		DrawBufferBytes: len(r.buf) * 2,
		DirtyAreas:      r.dirty.n,
		MaxDirtyAreas:   r.dirty.high,
		Refreshes:       r.refreshes,
		FlushCalls:      r.flushCalls,
		FlushedPixels:   r.flushedPixels,
		PointerReads:    r.pointerReads,
		Tick:            r.tick,
	}
}
