package ui

import (
	"image/color"

	"touchdrive/hal"

	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*Canvas)(nil)

// Canvas is a rectangular window of pixels in screen coordinates. Drawing outside
// the window is clipped. It satisfies drivers.Displayer so tinyfont can draw on it.
type Canvas struct {
	area hal.Region
	px   []hal.Color
	w    int
}

// NewCanvas wraps px as the pixels of area. px must hold at least area.Area() pixels.
func NewCanvas(area hal.Region, px []hal.Color) *Canvas {
	return &Canvas{area: area, px: px[:area.Area()], w: area.Width()}
}

func (c *Canvas) Area() hal.Region    { return c.area }
func (c *Canvas) Pixels() []hal.Color { return c.px }

func (c *Canvas) Set(x, y int, col hal.Color) {
	if !c.area.Contains(x, y) {
		return
	}
	c.px[(y-c.area.Y1)*c.w+(x-c.area.X1)] = col
}

func (c *Canvas) Fill(col hal.Color) {
	for i := range c.px {
		c.px[i] = col
	}
}

func (c *Canvas) FillRect(r hal.Region, col hal.Color) {
	clip, ok := r.Intersect(c.area)
	if !ok {
		return
	}
	for y := clip.Y1; y <= clip.Y2; y++ {
		row := c.px[(y-c.area.Y1)*c.w:]
		for x := clip.X1; x <= clip.X2; x++ {
			row[x-c.area.X1] = col
		}
	}
}

func (c *Canvas) Size() (x, y int16) {
	return int16(c.area.X2 + 1), int16(c.area.Y2 + 1)
}

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	c.Set(int(x), int(y), hal.ColorFromRGBA(col))
}

func (c *Canvas) Display() error { return nil }
