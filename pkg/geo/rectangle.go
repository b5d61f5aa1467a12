// Package geo provides the axis-aligned rectangle used for node bounds and
// range queries. A rectangle is described by its centre and full extents.
package geo

import (
	"fmt"
	"math"
)

// Quadrant identifies one quarter of a rectangle.
type Quadrant int

const (
	TopLeft Quadrant = iota
	TopRight
	LowerLeft
	LowerRight
)

func (q Quadrant) String() string {
	switch q {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case LowerLeft:
		return "lower-left"
	case LowerRight:
		return "lower-right"
	}
	return fmt.Sprintf("Quadrant(%d)", int(q))
}

// Rectangle is an axis-aligned box defined by its centre (X, Y) and its full
// width and height. The y axis grows downwards, so Top is the low-y edge.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRectangle creates a rectangle centred at (x, y). Negative extents are
// taken by absolute value.
func NewRectangle(x, y, width, height float64) Rectangle {
	return Rectangle{X: x, Y: y, Width: math.Abs(width), Height: math.Abs(height)}
}

// PointRect returns the zero-size rectangle located at (x, y).
func PointRect(x, y float64) Rectangle {
	return Rectangle{X: x, Y: y}
}

func (r Rectangle) HalfWidth() float64  { return r.Width / 2 }
func (r Rectangle) HalfHeight() float64 { return r.Height / 2 }
func (r Rectangle) Left() float64       { return r.X - r.Width/2 }
func (r Rectangle) Right() float64      { return r.X + r.Width/2 }
func (r Rectangle) Top() float64        { return r.Y - r.Height/2 }
func (r Rectangle) Bottom() float64     { return r.Y + r.Height/2 }

// Contains reports whether (x, y) lies inside r. Both bounds are inclusive on
// each axis.
func (r Rectangle) Contains(x, y float64) bool {
	hw, hh := r.Width/2, r.Height/2
	return r.X-hw <= x && x <= r.X+hw &&
		r.Y-hh <= y && y <= r.Y+hh
}

// Intersects reports whether r and other overlap. Rectangles that only touch
// along an edge or a corner intersect.
func (r Rectangle) Intersects(other Rectangle) bool {
	return !(r.Right() < other.Left() ||
		other.Right() < r.Left() ||
		r.Bottom() < other.Top() ||
		other.Bottom() < r.Top())
}

// QuadrantOf returns the quadrant of r that (x, y) is routed to. Points on
// the vertical centre line go right and points on the horizontal centre line
// go down, so the centre itself belongs to LowerRight.
func (r Rectangle) QuadrantOf(x, y float64) Quadrant {
	left := x < r.X
	top := y < r.Y
	switch {
	case left && top:
		return TopLeft
	case top:
		return TopRight
	case left:
		return LowerLeft
	default:
		return LowerRight
	}
}

// Quadrant returns the quarter of r identified by q.
func (r Rectangle) Quadrant(q Quadrant) Rectangle {
	w, h := r.Width/2, r.Height/2
	dx, dy := w/2, h/2
	switch q {
	case TopLeft:
		return Rectangle{X: r.X - dx, Y: r.Y - dy, Width: w, Height: h}
	case TopRight:
		return Rectangle{X: r.X + dx, Y: r.Y - dy, Width: w, Height: h}
	case LowerLeft:
		return Rectangle{X: r.X - dx, Y: r.Y + dy, Width: w, Height: h}
	default:
		return Rectangle{X: r.X + dx, Y: r.Y + dy, Width: w, Height: h}
	}
}

// Quadrants returns the four quarters of r in traversal order.
func (r Rectangle) Quadrants() [4]Rectangle {
	return [4]Rectangle{
		r.Quadrant(TopLeft),
		r.Quadrant(TopRight),
		r.Quadrant(LowerLeft),
		r.Quadrant(LowerRight),
	}
}

func (r Rectangle) String() string {
	return fmt.Sprintf("boundary = {x = %g, y = %g, width = %g, height = %g}", r.X, r.Y, r.Width, r.Height)
}
