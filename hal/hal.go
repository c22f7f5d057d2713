package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// Backlight drives the panel backlight.
type Backlight interface {
	// SetBrightness sets the duty cycle in percent (0..100).
	SetBrightness(percent uint8) error
}

var ErrNotImplemented = errors.New("not implemented")

// Panel is the pixel sink of the display.
//
// WriteRegion blocks until the transfer of the rectangle has completed. Pixels are
// row-major RGB565 and cover the region exactly.
type Panel interface {
	Size() (width, height int)
	WriteRegion(r Region, pixels []Color) error
}

// TouchSample is the raw state reported by a touch controller.
type TouchSample struct {
	X       int
	Y       int
	Pressed bool
}

// TouchController is a polled touch controller.
//
// Poll returns ok=false when nothing touches the screen; that is not an error.
type TouchController interface {
	Reset() error
	Poll() (s TouchSample, ok bool, err error)
}

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	Backlight() Backlight
	Panel() Panel
	Touch() TouchController
}
