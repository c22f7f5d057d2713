package ili9488

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"touchdrive/hal"
)

type wire struct {
	dc, cs bool
}

type pin struct {
	level *bool
}

func (p pin) High() { *p.level = true }
func (p pin) Low()  { *p.level = false }

// frame is one bus transfer. Fields are exported so qt.DeepEquals can walk them.
type frame struct {
	Data  bool
	Bytes []byte
}

type fakeSPI struct {
	w      *wire
	frames []frame
	failAt int
	n      int
}

func (s *fakeSPI) Tx(w, r []byte) error {
	s.n++
	if s.failAt > 0 && s.n >= s.failAt {
		return errors.New("spi timeout")
	}
	if s.w.cs {
		return errors.New("cs not asserted")
	}
	s.frames = append(s.frames, frame{Data: s.w.dc, Bytes: append([]byte(nil), w...)})
	return nil
}

func (s *fakeSPI) Transfer(b byte) (byte, error) { return 0, nil }

func newTestDevice(cfg Config) (*Device, *fakeSPI) {
	w := &wire{}
	spi := &fakeSPI{w: w}
	d := New(spi, pin{&w.cs}, pin{&w.dc}, nil, cfg)
	d.sleep = func(time.Duration) {}
	return d, spi
}

func TestWriteRegionWindowAndPixels(t *testing.T) {
	c := qt.New(t)

	d, spi := newTestDevice(Config{Width: 480, Height: 320})
	r := hal.Region{X1: 1, Y1: 2, X2: 2, Y2: 3}
	px := []hal.Color{0x1234, 0xABCD, 0x0001, 0xFF00}

	c.Assert(d.WriteRegion(r, px), qt.IsNil)
	c.Assert(spi.frames, qt.DeepEquals, []frame{
		{Data: false, Bytes: []byte{cmdColAddr}},
		{Data: true, Bytes: []byte{0, 1, 0, 2}},
		{Data: false, Bytes: []byte{cmdPageAddr}},
		{Data: true, Bytes: []byte{0, 2, 0, 3}},
		{Data: false, Bytes: []byte{cmdMemWrite}},
		{Data: true, Bytes: []byte{0x12, 0x34, 0xAB, 0xCD, 0x00, 0x01, 0xFF, 0x00}},
	})
}

func TestWriteRegionChunksThroughTxBuffer(t *testing.T) {
	c := qt.New(t)

	d, spi := newTestDevice(Config{Width: 480, Height: 320, TxBufferBytes: 6})
	r := hal.Rect(0, 0, 7, 1)
	px := make([]hal.Color, 7)

	c.Assert(d.WriteRegion(r, px), qt.IsNil)

	var sizes []int
	for _, f := range spi.frames[5:] {
		sizes = append(sizes, len(f.Bytes))
	}
	c.Assert(sizes, qt.DeepEquals, []int{6, 6, 2})
}

func TestWriteRegionRejectsBadWindow(t *testing.T) {
	c := qt.New(t)

	d, spi := newTestDevice(Config{Width: 480, Height: 320})

	err := d.WriteRegion(hal.Rect(470, 0, 20, 1), make([]hal.Color, 20))
	var pf *hal.PanelFault
	c.Assert(errors.As(err, &pf), qt.IsTrue)
	c.Assert(spi.frames, qt.HasLen, 0)

	err = d.WriteRegion(hal.Rect(0, 0, 2, 2), make([]hal.Color, 3))
	c.Assert(errors.As(err, &pf), qt.IsTrue)
}

func TestWriteRegionBusFailure(t *testing.T) {
	c := qt.New(t)

	d, spi := newTestDevice(Config{Width: 480, Height: 320})
	spi.failAt = 6

	err := d.WriteRegion(hal.Rect(0, 0, 4, 4), make([]hal.Color, 16))
	var pf *hal.PanelFault
	c.Assert(errors.As(err, &pf), qt.IsTrue)
	c.Assert(pf.Op, qt.Equals, "write")
	c.Assert(pf.Region, qt.Equals, hal.Rect(0, 0, 4, 4))
}

func TestConfigureSequence(t *testing.T) {
	c := qt.New(t)

	d, spi := newTestDevice(Config{Width: 480, Height: 320, MADCTL: MADCTLSwapXY | MADCTLBGR, Invert: true})
	c.Assert(d.Configure(), qt.IsNil)

	var cmds []byte
	for _, f := range spi.frames {
		if !f.Data {
			cmds = append(cmds, f.Bytes[0])
		}
	}
	c.Assert(cmds, qt.DeepEquals, []byte{
		cmdPWCTRL1, cmdPWCTRL2, cmdVMCTRL, cmdCOLMOD, cmdFRMCTR1, cmdDISCTRL, cmdMADCTL,
		cmdInvertOn, cmdSleepOut, cmdDispOn,
	})

	w, h := d.Size()
	c.Assert(w, qt.Equals, 480)
	c.Assert(h, qt.Equals, 320)
}

func TestCmdRejectsLongParameterList(t *testing.T) {
	c := qt.New(t)

	d, spi := newTestDevice(Config{Width: 480, Height: 320})

	c.Assert(d.cmd(0xE0, make([]byte, 15)...), qt.IsNil)
	c.Assert(spi.frames[1].Bytes, qt.HasLen, 15)

	err := d.cmd(0xE0, make([]byte, 17)...)
	c.Assert(err, qt.ErrorIs, ErrCmdParams)
	c.Assert(spi.frames, qt.HasLen, 2)
}
