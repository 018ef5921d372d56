package state

import "math"

// Rect is an axis-aligned area on the canvas.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Right returns the maximum x of the area.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the maximum y of the area.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether the area has no extent on both axes.
func (r Rect) Empty() bool { return r.Width <= 0 && r.Height <= 0 }

// Contains reports whether the point lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() &&
		y >= r.Y && y <= r.Bottom()
}

// Overlaps reports whether the two areas touch or intersect.
func (r Rect) Overlaps(o Rect) bool {
	return !(r.Right() < o.X || o.Right() < r.X ||
		r.Bottom() < o.Y || o.Bottom() < r.Y)
}

// Inflate grows r by pad on every side.
func (r Rect) Inflate(pad float64) Rect {
	return Rect{
		X:      r.X - pad,
		Y:      r.Y - pad,
		Width:  r.Width + 2*pad,
		Height: r.Height + 2*pad,
	}
}

// Union returns the smallest area covering both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.Right(), o.Right())
	maxY := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// pointsBounds returns the bounding box of pts, or a zero Rect when empty.
func pointsBounds(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// BoundsOf returns the union of the bounds of objs.
func BoundsOf(objs []*Object) Rect {
	var (
		out   Rect
		found bool
	)
	for _, o := range objs {
		if o == nil {
			continue
		}
		b := o.Bounds()
		if !found {
			out, found = b, true
			continue
		}
		out = out.Union(b)
	}
	return out
}
