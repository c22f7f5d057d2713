package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"touchdrive/hal"
)

func newQueue() *dirtyQueue {
	q := &dirtyQueue{}
	q.setScreen(100, 100)
	return q
}

func TestDirtyClipsToScreen(t *testing.T) {
	q := newQueue()
	q.add(hal.Region{X1: -10, Y1: 90, X2: 10, Y2: 120})
	q.add(hal.Region{X1: 200, Y1: 200, X2: 210, Y2: 210})

	assert.Equal(t, []hal.Region{{X1: 0, Y1: 90, X2: 10, Y2: 99}}, q.list())
}

func TestDirtySkipsCoveredAndJoinsOverlapping(t *testing.T) {
	q := newQueue()
	q.add(hal.Rect(0, 0, 20, 20))
	q.add(hal.Rect(5, 5, 5, 5))
	assert.Len(t, q.list(), 1)

	// Side by side: the bounding box is exactly the two areas.
	q.add(hal.Rect(20, 0, 20, 20))
	assert.Equal(t, []hal.Region{hal.Rect(0, 0, 40, 20)}, q.list())

	// Far apart: kept separate.
	q.add(hal.Rect(80, 80, 5, 5))
	assert.Len(t, q.list(), 2)
}

func TestDirtyOverflowRedrawsScreen(t *testing.T) {
	q := newQueue()
	for i := 0; i < maxDirtyAreas+1; i++ {
		q.add(hal.Rect((i%6)*16, (i/6)*30, 2, 2))
	}
	assert.Equal(t, []hal.Region{hal.Rect(0, 0, 100, 100)}, q.list())
	assert.Equal(t, maxDirtyAreas, q.high)

	q.reset()
	assert.Empty(t, q.list())
}
