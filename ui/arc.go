package ui

import (
	"errors"
	"math"

	"touchdrive/hal"
)

var ErrAngle = errors.New("ui: negative angle")

// Arc draws a ring segment. Angles are in degrees, clockwise from 3 o'clock. The
// indicator runs from the start to the end angle on top of the background segment.
type Arc struct {
	Object

	bgStart, bgEnd int
	start, end     int
	width          int

	bgColor      hal.Color
	color        hal.Color
	pressedColor hal.Color
}

func (a *Arc) SetStartAngle(deg int) error {
	if deg < 0 {
		return ErrAngle
	}
	deg %= 360
	if deg != a.start {
		a.start = deg
		a.Invalidate()
	}
	return nil
}

func (a *Arc) SetEndAngle(deg int) error {
	if deg < 0 {
		return ErrAngle
	}
	deg %= 360
	if deg != a.end {
		a.end = deg
		a.Invalidate()
	}
	return nil
}

// SetBgAngles sets the background segment.
func (a *Arc) SetBgAngles(start, end int) error {
	if start < 0 || end < 0 {
		return ErrAngle
	}
	a.bgStart, a.bgEnd = start%360, end%360
	a.Invalidate()
	return nil
}

func (a *Arc) SetWidth(w int) {
	a.width = w
	a.Invalidate()
}

func (a *Arc) SetColors(bg, indicator hal.Color) {
	a.bgColor, a.color = bg, indicator
	a.Invalidate()
}

// Angles returns the indicator start and end angles.
func (a *Arc) Angles() (start, end int) { return a.start, a.end }

func (a *Arc) Draw(c *Canvas) {
	area := a.Area()
	clip, ok := area.Intersect(c.Area())
	if !ok {
		return
	}

	// Work in doubled coordinates so even sizes keep a half-pixel centre.
	cx2 := area.X1 + area.X2
	cy2 := area.Y1 + area.Y2
	d := min(area.Width(), area.Height())
	outer := d * d
	inner := max(d-2*a.width, 0)
	inner *= inner

	ind := a.color
	if a.pressed {
		ind = a.pressedColor
	}

	for y := clip.Y1; y <= clip.Y2; y++ {
		dy := 2*y - cy2
		for x := clip.X1; x <= clip.X2; x++ {
			dx := 2*x - cx2
			r := dx*dx + dy*dy
			if r > outer || r < inner {
				continue
			}
			deg := angleOf(dx, dy)
			switch {
			case inSweep(deg, a.start, a.end):
				c.Set(x, y, ind)
			case inSweep(deg, a.bgStart, a.bgEnd):
				c.Set(x, y, a.bgColor)
			}
		}
	}
}

func angleOf(dx, dy int) int {
	deg := math.Atan2(float64(dy), float64(dx)) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return int(deg) % 360
}

// inSweep reports whether deg lies on the clockwise sweep from start to end.
// Equal angles describe an empty sweep.
func inSweep(deg, start, end int) bool {
	span := end - start
	for span < 0 {
		span += 360
	}
	off := deg - start
	for off < 0 {
		off += 360
	}
	return off < span
}
