//go:build tinygo && !baremetal

package board

import (
	"fmt"
	"runtime"

	"touchdrive/hal"
)

type tinyGoHostHAL struct {
	logger *tinyGoHostLogger
	bl     *tinyGoHostBacklight
	panel  *tinyGoHostPanel
}

// New returns a TinyGo-on-host board.
//
// This is used by `tinygo run` targets like linux/wasm where there is no MCU pin
// mapping. The panel is an in-memory buffer and nothing ever touches it.
func New() hal.HAL {
	l := &tinyGoHostLogger{}
	return &tinyGoHostHAL{
		logger: l,
		bl:     &tinyGoHostBacklight{logger: l},
		panel:  newTinyGoHostPanel(800, 480),
	}
}

func (h *tinyGoHostHAL) Logger() hal.Logger         { return h.logger }
func (h *tinyGoHostHAL) Backlight() hal.Backlight   { return h.bl }
func (h *tinyGoHostHAL) Panel() hal.Panel           { return h.panel }
func (h *tinyGoHostHAL) Touch() hal.TouchController { return tinyGoHostTouch{} }

type tinyGoHostLogger struct{}

func (l *tinyGoHostLogger) WriteLineString(s string) {
	println(s)
}

func (l *tinyGoHostLogger) WriteLineBytes(b []byte) {
	println(string(b))
}

type tinyGoHostBacklight struct {
	logger *tinyGoHostLogger
}

func (b *tinyGoHostBacklight) SetBrightness(percent uint8) error {
	b.logger.WriteLineString(fmt.Sprintf("backlight: %d%% (tinygo/%s)", percent, runtime.GOOS))
	return nil
}

type tinyGoHostPanel struct {
	w, h int
	buf  []hal.Color
}

func newTinyGoHostPanel(w, h int) *tinyGoHostPanel {
	return &tinyGoHostPanel{w: w, h: h, buf: make([]hal.Color, w*h)}
}

func (p *tinyGoHostPanel) Size() (int, int) { return p.w, p.h }

func (p *tinyGoHostPanel) WriteRegion(r hal.Region, pixels []hal.Color) error {
	if !r.Valid() || r.X1 < 0 || r.Y1 < 0 || r.X2 >= p.w || r.Y2 >= p.h || len(pixels) != r.Area() {
		return &hal.PanelFault{Op: "write", Region: r}
	}
	w := r.Width()
	for y := r.Y1; y <= r.Y2; y++ {
		copy(p.buf[y*p.w+r.X1:], pixels[(y-r.Y1)*w:(y-r.Y1+1)*w])
	}
	return nil
}

type tinyGoHostTouch struct{}

func (tinyGoHostTouch) Reset() error { return nil }

func (tinyGoHostTouch) Poll() (hal.TouchSample, bool, error) { return hal.TouchSample{}, false, nil }
