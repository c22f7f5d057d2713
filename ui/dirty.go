package ui

import "touchdrive/hal"

const maxDirtyAreas = 16

// dirtyQueue collects invalidated areas until the next refresh. Overlapping or
// adjacent areas are joined when the bounding box is no larger than the two areas
// together. When the queue overflows the whole screen is redrawn.
type dirtyQueue struct {
	screen hal.Region
	areas  [maxDirtyAreas]hal.Region
	n      int
	full   bool
	high   int
}

func (q *dirtyQueue) setScreen(w, h int) {
	q.screen = hal.Rect(0, 0, w, h)
	q.reset()
}

func (q *dirtyQueue) add(r hal.Region) {
	if !q.screen.Valid() || q.full {
		return
	}
	r, ok := r.Intersect(q.screen)
	if !ok {
		return
	}
	for i := 0; i < q.n; i++ {
		e := q.areas[i]
		if e.Covers(r) {
			return
		}
		u := e.Union(r)
		if u.Area() <= e.Area()+r.Area() {
			q.remove(i)
			q.add(u)
			return
		}
	}
	if q.n == len(q.areas) {
		q.invalidateAll()
		return
	}
	q.areas[q.n] = r
	q.n++
	q.high = max(q.high, q.n)
}

func (q *dirtyQueue) invalidateAll() {
	if !q.screen.Valid() {
		return
	}
	q.areas[0] = q.screen
	q.n = 1
	q.full = true
	q.high = max(q.high, q.n)
}

func (q *dirtyQueue) remove(i int) {
	copy(q.areas[i:q.n], q.areas[i+1:q.n])
	q.n--
}

func (q *dirtyQueue) list() []hal.Region { return q.areas[:q.n] }

func (q *dirtyQueue) reset() {
	q.n = 0
	q.full = false
}
