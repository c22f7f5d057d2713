//go:build !tinygo

package hal

import "sync/atomic"

// pointerCell holds the latest pointer sample. Writers overwrite, readers see
// only the newest state.
type pointerCell struct {
	seq atomic.Uint32
	v   atomic.Uint64
}

const pointerPressed = 1 << 63

// Store records s and bumps the sequence counter. Negative coordinates are
// stored as 0.
func (c *pointerCell) Store(s TouchSample) uint32 {
	var v uint64
	if s.Pressed {
		x, y := uint32(max(s.X, 0)), uint32(max(s.Y, 0))
		v = pointerPressed | uint64(x&0x7FFFFFFF)<<32 | uint64(y)
	}
	c.v.Store(v)
	return c.seq.Add(1)
}

// Load returns the last stored sample and the current sequence number.
func (c *pointerCell) Load() (TouchSample, uint32) {
	seq := c.seq.Load()
	v := c.v.Load()
	if v&pointerPressed == 0 {
		return TouchSample{}, seq
	}
	return TouchSample{
		X:       int(uint32(v>>32) & 0x7FFFFFFF),
		Y:       int(uint32(v)),
		Pressed: true,
	}, seq
}

// cellTouch is a touch controller fed by the window's pointer.
type cellTouch struct {
	cell *pointerCell
}

func (cellTouch) Reset() error { return nil }

func (t cellTouch) Poll() (TouchSample, bool, error) {
	s, _ := t.cell.Load()
	return s, s.Pressed, nil
}
