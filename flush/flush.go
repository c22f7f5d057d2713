// Package flush writes dirty regions to the panel in bounded row batches.
package flush

import (
	"errors"
	"fmt"

	"touchdrive/hal"
)

// DefaultBatchLines is the number of scanlines buffered per panel write.
const DefaultBatchLines = 12

var (
	ErrInvalidRegion = errors.New("flush: invalid region")
	ErrFaulted       = errors.New("flush: adapter faulted")
)

type Option func(*Adapter)

// WithBatchHook registers fn to observe every panel write issued by the adapter.
func WithBatchHook(fn func(hal.Region)) Option {
	return func(a *Adapter) { a.hook = fn }
}

// Adapter splits regions into batches of at most the batch height and writes them
// top to bottom. The first panel error is latched: the adapter then refuses every
// later flush because the panel's write cursor is in an unknown state.
type Adapter struct {
	panel  hal.Panel
	lines  int
	width  int
	height int
	hook   func(hal.Region)
	fault  error
}

func New(panel hal.Panel, batchLines int, opts ...Option) *Adapter {
	if batchLines <= 0 {
		batchLines = DefaultBatchLines
	}
	w, h := panel.Size()
	a := &Adapter{panel: panel, lines: batchLines, width: w, height: h}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) BatchLines() int { return a.lines }

// Err returns the latched panel fault, if any.
func (a *Adapter) Err() error { return a.fault }

// Flush writes pixels into r and returns once every batch has been transferred.
func (a *Adapter) Flush(r hal.Region, pixels []hal.Color) error {
	if a.fault != nil {
		return fmt.Errorf("%w: %w", ErrFaulted, a.fault)
	}
	if !r.Valid() || r.X1 < 0 || r.Y1 < 0 || r.X2 >= a.width || r.Y2 >= a.height {
		return fmt.Errorf("%w: %s outside %dx%d", ErrInvalidRegion, r, a.width, a.height)
	}
	if len(pixels) != r.Area() {
		return fmt.Errorf("%w: %s needs %d pixels, got %d", ErrInvalidRegion, r, r.Area(), len(pixels))
	}

	w := r.Width()
	for y := r.Y1; y <= r.Y2; y += a.lines {
		y2 := min(y+a.lines-1, r.Y2)
		batch := r.Rows(y, y2)
		off := (y - r.Y1) * w
		if a.hook != nil {
			a.hook(batch)
		}
		if err := a.panel.WriteRegion(batch, pixels[off:off+batch.Area()]); err != nil {
			var pf *hal.PanelFault
			if !errors.As(err, &pf) {
				err = &hal.PanelFault{Op: "flush", Region: batch, Err: err}
			}
			a.fault = err
			return err
		}
	}
	return nil
}
