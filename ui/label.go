package ui

import (
	"touchdrive/hal"

	"tinygo.org/x/tinyfont"
)

// Label draws a single line of text. Its size follows the text extent.
type Label struct {
	Object

	text  string
	font  tinyfont.Fonter
	color hal.Color
}

func (l *Label) Text() string { return l.text }

func (l *Label) SetText(s string) {
	if s == l.text {
		return
	}
	l.text = s
	l.resize()
}

func (l *Label) SetFont(f tinyfont.Fonter) {
	l.font = f
	l.resize()
}

func (l *Label) Color() hal.Color { return l.color }

func (l *Label) SetColor(c hal.Color) {
	if c == l.color {
		return
	}
	l.color = c
	l.Invalidate()
}

func (l *Label) resize() {
	if l.font == nil {
		l.SetSize(0, 0)
		return
	}
	_, w := tinyfont.LineWidth(l.font, l.text)
	l.SetSize(int(w), int(l.font.GetYAdvance()))
	l.Invalidate()
}

func (l *Label) Draw(c *Canvas) {
	if l.font == nil || l.text == "" {
		return
	}
	area := l.Area()
	if _, ok := area.Intersect(c.Area()); !ok {
		return
	}
	baseline := area.Y1 + area.Height()*3/4
	tinyfont.WriteLine(c, l.font, int16(area.X1), int16(baseline), l.text, l.color.RGBA())
}
