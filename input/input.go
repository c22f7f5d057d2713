// Package input turns raw touch controller state into pointer events.
//
// Every Read polls the controller once and yields exactly one event. Whatever the
// controller saw between two polls collapses into its current state, so a tap that
// starts and ends between polls is not reported.
package input

import (
	"errors"
	"fmt"

	"touchdrive/hal"
)

type State uint8

const (
	Released State = iota
	Pressed
)

func (s State) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// PointerEvent is the press/release signal handed to the rendering runtime.
// Released events always sit at the origin.
type PointerEvent struct {
	State State
	X     int
	Y     int
}

func PressedAt(x, y int) PointerEvent { return PointerEvent{State: Pressed, X: x, Y: y} }

func ReleasedEvent() PointerEvent { return PointerEvent{State: Released} }

func (e PointerEvent) String() string {
	return fmt.Sprintf("%s{%d,%d}", e.State, e.X, e.Y)
}

// Adapter polls a touch controller on behalf of the render loop.
type Adapter struct {
	ctrl    hal.TouchController
	width   int
	height  int
	started bool
}

// New returns an adapter for a panel of the given size.
func New(ctrl hal.TouchController, width, height int) *Adapter {
	return &Adapter{ctrl: ctrl, width: width, height: height}
}

// Start resets the controller. Once a reset has succeeded later calls do nothing.
func (a *Adapter) Start() error {
	if a.started {
		return nil
	}
	if err := a.ctrl.Reset(); err != nil {
		return asBusFault("reset", err)
	}
	a.started = true
	return nil
}

// Read polls the controller once.
func (a *Adapter) Read() (PointerEvent, error) {
	s, ok, err := a.ctrl.Poll()
	if err != nil {
		return ReleasedEvent(), asBusFault("poll", err)
	}
	if !ok || !s.Pressed {
		return ReleasedEvent(), nil
	}
	return PressedAt(clamp(s.X, a.width), clamp(s.Y, a.height)), nil
}

func clamp(v, size int) int {
	if v < 0 || size <= 0 {
		return 0
	}
	if v >= size {
		return size - 1
	}
	return v
}

func asBusFault(op string, err error) error {
	var bf *hal.BusFault
	if errors.As(err, &bf) {
		return err
	}
	return &hal.BusFault{Op: "touch " + op, Err: err}
}
