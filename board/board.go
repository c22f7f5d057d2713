//go:build tinygo && baremetal

package board

import (
	"machine"

	"touchdrive/drivers/gt911"
	"touchdrive/drivers/ili9488"
	"touchdrive/hal"
)

type boardHAL struct {
	logger *uartLogger
	bl     hal.Backlight
	panel  hal.Panel
	touch  hal.TouchController
}

// New returns the board HAL: an ILI9488 panel on SPI1 and a GT911 touch
// controller on I2C0.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// Panel: SCK GP10, SDO GP11, SDI GP12, CS GP13, DC GP14, RST GP15.
// Touch: SDA GP4, SCL GP5, RST GP6, INT GP7. Backlight: GP8.
func New() hal.HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	h := &boardHAL{
		logger: logger,
		bl:     newBacklight(machine.GP8),
		panel:  deadPanel{w: 320, h: 480},
		touch:  deadTouch{},
	}

	machine.SPI1.Configure(machine.SPIConfig{
		SCK:       machine.GP10,
		SDO:       machine.GP11,
		SDI:       machine.GP12,
		Frequency: 40_000_000,
	})
	lcd := ili9488.New(machine.SPI1, outputPin(machine.GP13), outputPin(machine.GP14), outputPin(machine.GP15), ili9488.Config{})
	if err := lcd.Configure(); err != nil {
		logger.WriteLineString("board: panel init failed: " + err.Error())
	} else {
		h.panel = lcd
	}

	if err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GP4,
		SCL:       machine.GP5,
		Frequency: 400_000,
	}); err != nil {
		logger.WriteLineString("board: i2c init failed: " + err.Error())
	} else {
		w, ht := h.panel.Size()
		h.touch = gt911.New(machine.I2C0, outputPin(machine.GP6), outputPin(machine.GP7), gt911.Config{Width: w, Height: ht})
	}
	return h
}

func (h *boardHAL) Logger() hal.Logger         { return h.logger }
func (h *boardHAL) Backlight() hal.Backlight   { return h.bl }
func (h *boardHAL) Panel() hal.Panel           { return h.panel }
func (h *boardHAL) Touch() hal.TouchController { return h.touch }

// deadPanel stands in for a panel that failed to initialise. Every write faults.
type deadPanel struct{ w, h int }

func (p deadPanel) Size() (int, int) { return p.w, p.h }

func (p deadPanel) WriteRegion(r hal.Region, _ []hal.Color) error {
	return &hal.PanelFault{Op: "write", Region: r, Err: hal.ErrNotImplemented}
}

type deadTouch struct{}

func (deadTouch) Reset() error { return &hal.BusFault{Op: "touch reset", Err: hal.ErrNotImplemented} }

func (deadTouch) Poll() (hal.TouchSample, bool, error) {
	return hal.TouchSample{}, false, &hal.BusFault{Op: "touch poll", Err: hal.ErrNotImplemented}
}
