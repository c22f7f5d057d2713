//go:build tinygo && baremetal

package board

import (
	"machine"

	"touchdrive/hal"
)

// backlightHz is the backlight PWM carrier frequency.
const backlightHz = 20000

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

// newBacklight dims pin by PWM. Pins without a usable PWM slice fall back to
// on/off switching.
func newBacklight(pin machine.Pin) hal.Backlight {
	pwm := pwmForPin(pin)
	if pwm == nil {
		return &pinBacklight{pin: outputPin(pin)}
	}
	if err := pwm.Configure(machine.PWMConfig{Period: 1e9 / backlightHz}); err != nil {
		return &pinBacklight{pin: outputPin(pin)}
	}
	ch, err := pwm.Channel(pin)
	if err != nil {
		return &pinBacklight{pin: outputPin(pin)}
	}
	pwm.Enable(true)
	return &pwmBacklight{pwm: pwm, ch: ch}
}

// pinBacklight switches the backlight through a plain output: any non-zero
// brightness turns it on.
type pinBacklight struct {
	pin machine.Pin
}

func (b *pinBacklight) SetBrightness(percent uint8) error {
	if percent == 0 {
		b.pin.Low()
	} else {
		b.pin.High()
	}
	return nil
}

func outputPin(p machine.Pin) machine.Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.High()
	return p
}
