package editor

import "fmt"

// Rect is an axis-aligned rectangle in page pixel coordinates. Left and Top
// are inclusive, Right and Bottom exclusive.
type Rect struct {
	Left, Top, Right, Bottom int
}

// NewRect builds a rectangle from its edges.
func NewRect(left, top, right, bottom int) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Union returns the smallest rectangle containing r and o. Empty rectangles
// are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x := Rect{
		Left:   max(r.Left, o.Left),
		Top:    max(r.Top, o.Top),
		Right:  min(r.Right, o.Right),
		Bottom: min(r.Bottom, o.Bottom),
	}
	if x.Empty() {
		return Rect{}
	}
	return x
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left && o.Top >= r.Top && o.Right <= r.Right && o.Bottom <= r.Bottom
}

// Offset translates the rectangle.
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// clampDelta returns the translation that moves r inside bounds, favouring
// the top left edge when r is larger than bounds.
func (r Rect) clampDelta(bounds Rect) (dx, dy int) {
	if r.Right > bounds.Right {
		dx = bounds.Right - r.Right
	}
	if r.Left+dx < bounds.Left {
		dx = bounds.Left - r.Left
	}
	if r.Bottom > bounds.Bottom {
		dy = bounds.Bottom - r.Bottom
	}
	if r.Top+dy < bounds.Top {
		dy = bounds.Top - r.Top
	}
	return dx, dy
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// UnionOf returns the union of the boxes of nodes.
func UnionOf(nodes []*Node) Rect {
	var u Rect
	for _, n := range nodes {
		u = u.Union(n.BBox())
	}
	return u
}
