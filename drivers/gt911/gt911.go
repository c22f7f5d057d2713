// Package gt911 drives a Goodix GT911 capacitive touch controller over I2C.
//
// The controller latches a new frame every few milliseconds and raises the
// buffer-ready bit of the status register. The host reads the points and then
// clears the status register to release the buffer. Between frames the driver
// keeps reporting the last state it decoded.
package gt911

import (
	"errors"
	"time"

	"touchdrive/hal"

	"tinygo.org/x/drivers"
)

const (
	// AddressDefault is selected when INT is held low during reset.
	AddressDefault uint16 = 0x5D
	// AddressAlternate is selected when INT is held high during reset.
	AddressAlternate uint16 = 0x14
)

const (
	regCommand   = 0x8040
	regProductID = 0x8140
	regResX      = 0x8146
	regStatus    = 0x814E
	regPoint1    = 0x814F

	statusBufferReady = 0x80
	statusPointsMask  = 0x0F

	pointBytes = 8
	maxPoints  = 5
)

var ErrProductID = errors.New("gt911: unexpected product id")

// OutputPin is a push-pull output.
type OutputPin interface {
	High()
	Low()
}

type Config struct {
	// Address is the 7-bit bus address; zero means AddressDefault.
	Address uint16

	// Width and Height are the panel size used for mirroring.
	Width  int
	Height int

	SwapXY  bool
	MirrorX bool
	MirrorY bool

	// SkipProbe disables the product-id check after reset.
	SkipProbe bool
}

// Device is a GT911 on an I2C bus.
type Device struct {
	bus   drivers.I2C
	rst   OutputPin
	irq   OutputPin
	cfg   Config
	sleep func(time.Duration)

	reg  [2]byte
	wbuf [3]byte
	rbuf [pointBytes]byte

	last   hal.TouchSample
	lastOK bool
}

// New returns a driver for the controller at cfg.Address. rst and irq may be nil when
// the lines are not wired to the host.
func New(bus drivers.I2C, rst, irq OutputPin, cfg Config) *Device {
	if cfg.Address == 0 {
		cfg.Address = AddressDefault
	}
	return &Device{
		bus:   bus,
		rst:   rst,
		irq:   irq,
		cfg:   cfg,
		sleep: time.Sleep,
	}
}

// Reset runs the power-on reset sequence and probes the product id.
func (d *Device) Reset() error {
	if d.rst != nil {
		if d.irq != nil {
			if d.cfg.Address == AddressAlternate {
				d.irq.High()
			} else {
				d.irq.Low()
			}
		}
		d.rst.Low()
		d.sleep(10 * time.Millisecond)
		d.rst.High()
		d.sleep(5 * time.Millisecond)
		if d.irq != nil {
			d.irq.Low()
		}
		d.sleep(50 * time.Millisecond)
	}

	d.last = hal.TouchSample{}
	d.lastOK = false

	if err := d.writeReg(regCommand, 0); err != nil {
		return &hal.BusFault{Op: "gt911 reset", Err: err}
	}
	if d.cfg.SkipProbe {
		return nil
	}
	id, err := d.ProductID()
	if err != nil {
		return err
	}
	if id != "911" {
		return &hal.BusFault{Op: "gt911 probe", Err: ErrProductID}
	}
	return nil
}

// ProductID returns the ASCII product id, "911" for a GT911.
func (d *Device) ProductID() (string, error) {
	var buf [4]byte
	if err := d.readReg(regProductID, buf[:]); err != nil {
		return "", &hal.BusFault{Op: "gt911 product id", Err: err}
	}
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n]), nil
}

// Resolution returns the resolution configured in the controller.
func (d *Device) Resolution() (x, y int, err error) {
	var buf [4]byte
	if err := d.readReg(regResX, buf[:]); err != nil {
		return 0, 0, &hal.BusFault{Op: "gt911 resolution", Err: err}
	}
	x = int(buf[0]) | int(buf[1])<<8
	y = int(buf[2]) | int(buf[3])<<8
	return x, y, nil
}

// Poll returns the first touch point of the most recent frame.
func (d *Device) Poll() (hal.TouchSample, bool, error) {
	if err := d.readReg(regStatus, d.rbuf[:1]); err != nil {
		return hal.TouchSample{}, false, &hal.BusFault{Op: "gt911 status", Err: err}
	}
	status := d.rbuf[0]
	if status&statusBufferReady == 0 {
		return d.last, d.lastOK, nil
	}

	n := int(status & statusPointsMask)
	if n > 0 && n <= maxPoints {
		if err := d.readReg(regPoint1, d.rbuf[:pointBytes]); err != nil {
			return hal.TouchSample{}, false, &hal.BusFault{Op: "gt911 point", Err: err}
		}
	}
	if err := d.writeReg(regStatus, 0); err != nil {
		return hal.TouchSample{}, false, &hal.BusFault{Op: "gt911 ack", Err: err}
	}

	if n == 0 || n > maxPoints {
		d.last = hal.TouchSample{}
		d.lastOK = false
		return d.last, false, nil
	}

	x := int(d.rbuf[1]) | int(d.rbuf[2])<<8
	y := int(d.rbuf[3]) | int(d.rbuf[4])<<8
	x, y = d.transform(x, y)
	d.last = hal.TouchSample{X: x, Y: y, Pressed: true}
	d.lastOK = true
	return d.last, true, nil
}

func (d *Device) transform(x, y int) (int, int) {
	if d.cfg.SwapXY {
		x, y = y, x
	}
	if d.cfg.MirrorX && d.cfg.Width > 0 {
		x = d.cfg.Width - 1 - x
	}
	if d.cfg.MirrorY && d.cfg.Height > 0 {
		y = d.cfg.Height - 1 - y
	}
	return x, y
}

func (d *Device) readReg(reg uint16, buf []byte) error {
	d.reg[0] = byte(reg >> 8)
	d.reg[1] = byte(reg)
	return d.bus.Tx(d.cfg.Address, d.reg[:], buf)
}

func (d *Device) writeReg(reg uint16, v byte) error {
	d.wbuf[0] = byte(reg >> 8)
	d.wbuf[1] = byte(reg)
	d.wbuf[2] = v
	return d.bus.Tx(d.cfg.Address, d.wbuf[:], nil)
}
