package flush

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touchdrive/hal"
)

type write struct {
	r  hal.Region
	px []hal.Color
}

type fakePanel struct {
	w, h   int
	writes []write
	failAt int
}

func (p *fakePanel) Size() (int, int) { return p.w, p.h }

func (p *fakePanel) WriteRegion(r hal.Region, px []hal.Color) error {
	p.writes = append(p.writes, write{r: r, px: px})
	if p.failAt > 0 && len(p.writes) == p.failAt {
		return errors.New("panel timeout")
	}
	return nil
}

func pixelsFor(r hal.Region) []hal.Color {
	px := make([]hal.Color, r.Area())
	for i := range px {
		px[i] = hal.Color(i)
	}
	return px
}

func TestFlushSplitsTallRegion(t *testing.T) {
	panel := &fakePanel{w: 800, h: 480}
	var seen []hal.Region
	a := New(panel, 12, WithBatchHook(func(r hal.Region) { seen = append(seen, r) }))

	r := hal.Region{X1: 325, Y1: 165, X2: 474, Y2: 314}
	px := pixelsFor(r)
	require.NoError(t, a.Flush(r, px))

	require.Len(t, panel.writes, 13)
	assert.Equal(t, len(panel.writes), len(seen))

	next := r.Y1
	total := 0
	for i, w := range panel.writes {
		assert.LessOrEqual(t, w.r.Height(), 12, "batch %d", i)
		assert.Equal(t, next, w.r.Y1, "batch %d starts where the previous ended", i)
		assert.Equal(t, r.X1, w.r.X1)
		assert.Equal(t, r.X2, w.r.X2)
		assert.Len(t, w.px, w.r.Area())
		assert.Equal(t, hal.Color((w.r.Y1-r.Y1)*r.Width()), w.px[0])
		next = w.r.Y2 + 1
		total += w.r.Height()
	}
	assert.Equal(t, r.Height(), total)
	assert.Equal(t, r.Y2+1, next)
}

func TestFlushShortRegionSingleWrite(t *testing.T) {
	panel := &fakePanel{w: 800, h: 480}
	a := New(panel, 12)

	r := hal.Rect(0, 0, 800, 12)
	require.NoError(t, a.Flush(r, pixelsFor(r)))
	require.Len(t, panel.writes, 1)
	assert.Equal(t, r, panel.writes[0].r)
}

func TestFlushRejectsInvalidRegion(t *testing.T) {
	panel := &fakePanel{w: 800, h: 480}
	a := New(panel, 12)

	tests := []struct {
		name string
		r    hal.Region
		px   int
	}{
		{"inverted", hal.Region{X1: 10, Y1: 0, X2: 5, Y2: 3}, 0},
		{"outside", hal.Rect(790, 0, 20, 2), 40},
		{"short pixels", hal.Rect(0, 0, 4, 4), 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Flush(tt.r, make([]hal.Color, tt.px))
			assert.ErrorIs(t, err, ErrInvalidRegion)
		})
	}
	assert.Empty(t, panel.writes)
	assert.NoError(t, a.Err(), "invalid input does not latch a fault")
}

func TestFlushFaultIsLatched(t *testing.T) {
	panel := &fakePanel{w: 800, h: 480, failAt: 2}
	a := New(panel, 12)

	r := hal.Rect(0, 0, 100, 40)
	err := a.Flush(r, pixelsFor(r))
	var pf *hal.PanelFault
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, hal.Rect(0, 12, 100, 12), pf.Region)
	assert.Len(t, panel.writes, 2, "no batch after the failing one")

	err = a.Flush(hal.Rect(0, 0, 1, 1), []hal.Color{0})
	assert.ErrorIs(t, err, ErrFaulted)
	assert.ErrorAs(t, err, &pf)
	assert.Len(t, panel.writes, 2, "faulted adapter does not touch the panel")
}

func TestNewDefaultsBatchLines(t *testing.T) {
	a := New(&fakePanel{w: 10, h: 10}, 0)
	assert.Equal(t, DefaultBatchLines, a.BatchLines())
}
