package ui

import (
	"time"

	"touchdrive/hal"
)

// Align positions an object relative to the screen.
type Align uint8

const (
	AlignNone Align = iota
	AlignCenter
	AlignTopMid
	AlignBottomMid
)

type EventCode uint8

const (
	EventPressed EventCode = iota + 1
	EventLongPressed
	EventReleased
	EventClicked
)

func (c EventCode) String() string {
	switch c {
	case EventPressed:
		return "pressed"
	case EventLongPressed:
		return "long-pressed"
	case EventReleased:
		return "released"
	case EventClicked:
		return "clicked"
	default:
		return "unknown"
	}
}

// Event is delivered to the handlers of the object under the pointer.
type Event struct {
	Code   EventCode
	Target Widget
	X, Y   int
	At     time.Duration
}

// Widget is anything the runtime can draw.
type Widget interface {
	Obj() *Object
	Draw(c *Canvas)
}

// Object holds the geometry and input state shared by all widgets.
type Object struct {
	rt *Runtime

	x, y   int
	w, h   int
	align  Align
	dx, dy int

	hidden    bool
	clickable bool
	pressed   bool

	handlers []func(Event)
}

func (o *Object) Obj() *Object { return o }

// Area returns the screen rectangle of the object.
func (o *Object) Area() hal.Region {
	x, y := o.x, o.y
	if o.align != AlignNone && o.rt != nil {
		sw, sh := o.rt.width, o.rt.height
		switch o.align {
		case AlignCenter:
			x = (sw-o.w)/2 + o.dx
			y = (sh-o.h)/2 + o.dy
		case AlignTopMid:
			x = (sw-o.w)/2 + o.dx
			y = o.dy
		case AlignBottomMid:
			x = (sw-o.w)/2 + o.dx
			y = sh - o.h + o.dy
		}
	}
	return hal.Rect(x, y, o.w, o.h)
}

func (o *Object) SetPos(x, y int) {
	o.Invalidate()
	o.align = AlignNone
	o.x, o.y = x, y
	o.Invalidate()
}

func (o *Object) SetSize(w, h int) {
	if w == o.w && h == o.h {
		return
	}
	o.Invalidate()
	o.w, o.h = w, h
	o.Invalidate()
}

func (o *Object) SetAlign(a Align, dx, dy int) {
	o.Invalidate()
	o.align, o.dx, o.dy = a, dx, dy
	o.Invalidate()
}

func (o *Object) SetHidden(hidden bool) {
	if hidden == o.hidden {
		return
	}
	o.hidden = hidden
	o.Invalidate()
}

func (o *Object) Hidden() bool              { return o.hidden }
func (o *Object) SetClickable(v bool)       { o.clickable = v }
func (o *Object) Clickable() bool           { return o.clickable }
func (o *Object) Pressed() bool             { return o.pressed }
func (o *Object) OnEvent(fn func(ev Event)) { o.handlers = append(o.handlers, fn) }

// Invalidate marks the object's area for redraw.
func (o *Object) Invalidate() {
	if o.rt == nil || o.w <= 0 || o.h <= 0 {
		return
	}
	o.rt.Invalidate(o.Area())
}

func (o *Object) setPressed(v bool) {
	if v == o.pressed {
		return
	}
	o.pressed = v
	o.Invalidate()
}

func (o *Object) send(ev Event) {
	for _, fn := range o.handlers {
		fn(ev)
	}
}
