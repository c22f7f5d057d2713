package board

import "touchdrive/hal"

// pwmOutput is the part of a PWM slice the backlight needs.
type pwmOutput interface {
	Top() uint32
	Set(channel uint8, value uint32)
}

// pwmBacklight dims the backlight by duty cycle on one PWM channel.
type pwmBacklight struct {
	pwm     pwmOutput
	ch      uint8
	percent uint8
}

var _ hal.Backlight = (*pwmBacklight)(nil)

func (b *pwmBacklight) SetBrightness(percent uint8) error {
	if percent > 100 {
		percent = 100
	}
	b.percent = percent
	b.pwm.Set(b.ch, dutyFor(percent, b.pwm.Top()))
	return nil
}

// dutyFor returns the compare value for percent of a counter wrapping at top.
func dutyFor(percent uint8, top uint32) uint32 {
	if percent >= 100 {
		return top
	}
	return uint32(uint64(top) * uint64(percent) / 100)
}
