package hal

import "strconv"

// Region is a rectangle with inclusive corners.
type Region struct {
	X1, Y1, X2, Y2 int
}

// Rect returns the region of size w x h whose top-left corner is (x, y).
func Rect(x, y, w, h int) Region {
	return Region{X1: x, Y1: y, X2: x + w - 1, Y2: y + h - 1}
}

func (r Region) Width() int  { return r.X2 - r.X1 + 1 }
func (r Region) Height() int { return r.Y2 - r.Y1 + 1 }

// Area returns the number of pixels covered, 0 for an invalid region.
func (r Region) Area() int {
	if !r.Valid() {
		return 0
	}
	return r.Width() * r.Height()
}

// Valid reports whether the corners are ordered.
func (r Region) Valid() bool { return r.X1 <= r.X2 && r.Y1 <= r.Y2 }

func (r Region) Contains(x, y int) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

// Covers reports whether o lies entirely inside r.
func (r Region) Covers(o Region) bool {
	return o.X1 >= r.X1 && o.X2 <= r.X2 && o.Y1 >= r.Y1 && o.Y2 <= r.Y2
}

// Intersect returns the overlap of r and o; ok is false when they are disjoint.
func (r Region) Intersect(o Region) (Region, bool) {
	out := Region{
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
		X2: min(r.X2, o.X2),
		Y2: min(r.Y2, o.Y2),
	}
	return out, out.Valid()
}

// Union returns the bounding box of r and o.
func (r Region) Union(o Region) Region {
	return Region{
		X1: min(r.X1, o.X1),
		Y1: min(r.Y1, o.Y1),
		X2: max(r.X2, o.X2),
		Y2: max(r.Y2, o.Y2),
	}
}

// Rows returns the horizontal band of r between rows y1 and y2 (inclusive).
func (r Region) Rows(y1, y2 int) Region {
	return Region{X1: r.X1, Y1: y1, X2: r.X2, Y2: y2}
}

func (r Region) String() string {
	b := make([]byte, 0, 32)
	b = append(b, '(')
	b = strconv.AppendInt(b, int64(r.X1), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(r.Y1), 10)
	b = append(b, ")-("...)
	b = strconv.AppendInt(b, int64(r.X2), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(r.Y2), 10)
	b = append(b, ')')
	return string(b)
}
