// Package ili9488 writes pixel regions to an ILI9488 panel on a 4-wire SPI bus in
// 16bpp mode.
package ili9488

import (
	"errors"
	"fmt"
	"time"

	"touchdrive/hal"

	"tinygo.org/x/drivers"
)

const (
	cmdSleepOut = 0x11
	cmdInvertOn = 0x21
	cmdDispOn   = 0x29
	cmdColAddr  = 0x2A
	cmdPageAddr = 0x2B
	cmdMemWrite = 0x2C
	cmdMADCTL   = 0x36
	cmdCOLMOD   = 0x3A
	cmdFRMCTR1  = 0xB1
	cmdDISCTRL  = 0xB6
	cmdPWCTRL1  = 0xC0
	cmdPWCTRL2  = 0xC1
	cmdVMCTRL   = 0xC5
)

const (
	MADCTLMirrorY = 0x80
	MADCTLMirrorX = 0x40
	MADCTLSwapXY  = 0x20
	MADCTLBGR     = 0x08
	MADCTLHFlip   = 0x04
)

var (
	ErrTxBuffer  = errors.New("ili9488: tx buffer too small")
	ErrCmdParams = errors.New("ili9488: too many command parameters")
)

// OutputPin is a push-pull output.
type OutputPin interface {
	High()
	Low()
}

type Config struct {
	Width  int
	Height int

	// MADCTL is the memory access control byte (orientation and colour order).
	MADCTL byte
	Invert bool

	// TxBufferBytes bounds the bytes handed to the bus per transfer.
	TxBufferBytes int
}

// Device is an ILI9488 panel. It implements hal.Panel.
type Device struct {
	spi drivers.SPI
	cs  OutputPin
	dc  OutputPin
	rst OutputPin
	cfg Config

	sleep  func(time.Duration)
	cmdBuf [16]byte
	txBuf  []byte
}

func New(spi drivers.SPI, cs, dc, rst OutputPin, cfg Config) *Device {
	if cfg.Width <= 0 {
		cfg.Width = 320
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.TxBufferBytes <= 0 {
		cfg.TxBufferBytes = 4096
	}
	return &Device{
		spi:   spi,
		cs:    cs,
		dc:    dc,
		rst:   rst,
		cfg:   cfg,
		sleep: time.Sleep,
		txBuf: make([]byte, cfg.TxBufferBytes&^1),
	}
}

// Configure resets the controller and runs the init sequence.
func (d *Device) Configure() error {
	d.cs.High()
	d.dc.High()
	if d.rst != nil {
		d.rst.High()
		d.rst.Low()
		d.sleep(64 * time.Millisecond)
		d.rst.High()
		d.sleep(140 * time.Millisecond)
	}

	steps := []struct {
		cmd  byte
		data []byte
	}{
		{cmdPWCTRL1, []byte{0x17, 0x15}},
		{cmdPWCTRL2, []byte{0x41}},
		{cmdVMCTRL, []byte{0x00, 0x12, 0x80}},
		{cmdCOLMOD, []byte{0x55}},
		{cmdFRMCTR1, []byte{0xA0}},
		{cmdDISCTRL, []byte{0x02, 0x22, 0x3B}},
		{cmdMADCTL, []byte{d.cfg.MADCTL}},
	}
	for _, s := range steps {
		if err := d.cmd(s.cmd, s.data...); err != nil {
			return &hal.PanelFault{Op: "configure", Err: err}
		}
	}
	if d.cfg.Invert {
		if err := d.cmd(cmdInvertOn); err != nil {
			return &hal.PanelFault{Op: "configure", Err: err}
		}
	}
	if err := d.cmd(cmdSleepOut); err != nil {
		return &hal.PanelFault{Op: "configure", Err: err}
	}
	d.sleep(120 * time.Millisecond)
	if err := d.cmd(cmdDispOn); err != nil {
		return &hal.PanelFault{Op: "configure", Err: err}
	}
	return nil
}

func (d *Device) Size() (width, height int) { return d.cfg.Width, d.cfg.Height }

// WriteRegion streams pixels into the window r. It returns once the last chunk has
// been clocked out.
func (d *Device) WriteRegion(r hal.Region, pixels []hal.Color) error {
	if !r.Valid() || r.X1 < 0 || r.Y1 < 0 || r.X2 >= d.cfg.Width || r.Y2 >= d.cfg.Height {
		return &hal.PanelFault{Op: "write", Region: r, Err: errors.New("window out of range")}
	}
	if len(pixels) != r.Area() {
		return &hal.PanelFault{Op: "write", Region: r, Err: errors.New("pixel count mismatch")}
	}
	if len(d.txBuf) < 2 {
		return &hal.PanelFault{Op: "write", Region: r, Err: ErrTxBuffer}
	}

	if err := d.setWindow(r); err != nil {
		return &hal.PanelFault{Op: "window", Region: r, Err: err}
	}

	d.cs.Low()
	d.dc.High()
	defer d.cs.High()

	chunk := d.txBuf
	for len(pixels) > 0 {
		n := len(chunk) / 2
		if n > len(pixels) {
			n = len(pixels)
		}
		for i, p := range pixels[:n] {
			// The panel expects big-endian RGB565.
			chunk[2*i] = byte(p >> 8)
			chunk[2*i+1] = byte(p)
		}
		if err := d.spi.Tx(chunk[:2*n], nil); err != nil {
			return &hal.PanelFault{Op: "write", Region: r, Err: err}
		}
		pixels = pixels[n:]
	}
	return nil
}

func (d *Device) setWindow(r hal.Region) error {
	x0, x1 := uint16(r.X1), uint16(r.X2)
	y0, y1 := uint16(r.Y1), uint16(r.Y2)
	if err := d.cmd(cmdColAddr, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := d.cmd(cmdPageAddr, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	return d.cmd(cmdMemWrite)
}

func (d *Device) cmd(cmd byte, data ...byte) error {
	if len(data) > len(d.cmdBuf) {
		return fmt.Errorf("%w: 0x%02X takes %d bytes", ErrCmdParams, cmd, len(data))
	}
	d.cs.Low()
	defer d.cs.High()

	d.dc.Low()
	d.cmdBuf[0] = cmd
	if err := d.spi.Tx(d.cmdBuf[:1], nil); err != nil {
		return err
	}
	d.dc.High()
	if len(data) > 0 {
		n := copy(d.cmdBuf[:], data)
		if err := d.spi.Tx(d.cmdBuf[:n], nil); err != nil {
			return err
		}
	}
	return nil
}
