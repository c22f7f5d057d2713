package app

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"touchdrive/hal"
	"touchdrive/ui"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	faultBackground = hal.RGB(0xFF, 0xFF, 0xFF)
	faultForeground = hal.RGB(0, 0, 0)
)

// drawFault paints the fault report straight through the flush adapter, one
// buffer-sized band at a time, bypassing the widget runtime.
func (s *System) drawFault(fault error) error {
	font := &proggy.TinySZ8pt7b
	lineH := int(font.GetYAdvance())
	_, outbox := tinyfont.LineWidth(font, "0")
	charW := int(outbox)
	if lineH <= 0 || charW <= 0 {
		return errors.New("app: unusable fault font")
	}

	w, h := s.cfg.Width, s.cfg.Height
	lines := faultLines(fault, s.loop.Cycles(), w/charW)

	band := max(s.cfg.BufferLines, lineH)
	buf := make([]hal.Color, w*band)
	fg := faultForeground.RGBA()
	for y := 0; y < h; y += band {
		area := hal.Region{X1: 0, Y1: y, X2: w - 1, Y2: min(y+band, h) - 1}
		c := ui.NewCanvas(area, buf)
		c.Fill(faultBackground)
		for i, line := range lines {
			top := 2 + i*lineH
			if top > area.Y2 || top+lineH <= area.Y1 {
				continue
			}
			tinyfont.WriteLine(c, font, 2, int16(top+lineH*3/4), line, fg)
		}
		if err := s.flush.Flush(area, c.Pixels()); err != nil {
			return err
		}
	}
	return nil
}

func faultLines(fault error, cycle uint64, cols int) []string {
	raw := []string{
		"touchdrive fault",
		fmt.Sprintf("cycle: %d", cycle),
	}
	raw = append(raw, strings.Split(fault.Error(), ": ")...)

	var out []string
	for _, line := range raw {
		for len(line) > 0 {
			chunk, rest := takeRunes(line, cols)
			out = append(out, chunk)
			line = strings.TrimLeft(rest, " ")
		}
	}
	return out
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return s, ""
	}
	if len(s) <= n {
		return s, ""
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
