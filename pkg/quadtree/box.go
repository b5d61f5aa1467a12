package quadtree

import "github.com/1F47E/geo-index-quadtree/pkg/geo"

// box is the edge form of a rectangle. Children are cut at the parent's
// midpoint value itself, so siblings share their dividing line exactly and
// no floating point gap can open between them.
type box struct {
	minX, minY float64
	maxX, maxY float64
	midX, midY float64
}

func newBox(r geo.Rectangle) box {
	return box{
		minX: r.Left(), minY: r.Top(),
		maxX: r.Right(), maxY: r.Bottom(),
		midX: r.X, midY: r.Y,
	}
}

func edgeBox(minX, minY, maxX, maxY float64) box {
	return box{
		minX: minX, minY: minY,
		maxX: maxX, maxY: maxY,
		midX: minX + (maxX-minX)/2,
		midY: minY + (maxY-minY)/2,
	}
}

func (b box) contains(x, y float64) bool {
	return b.minX <= x && x <= b.maxX && b.minY <= y && y <= b.maxY
}

func (b box) intersects(o box) bool {
	return !(b.maxX < o.minX || o.maxX < b.minX || b.maxY < o.minY || o.maxY < b.minY)
}

// quadrant routes (x, y) with the same rule as geo.Rectangle.QuadrantOf.
func (b box) quadrant(x, y float64) geo.Quadrant {
	left := x < b.midX
	top := y < b.midY
	switch {
	case left && top:
		return geo.TopLeft
	case top:
		return geo.TopRight
	case left:
		return geo.LowerLeft
	default:
		return geo.LowerRight
	}
}

func (b box) split() [4]box {
	return [4]box{
		geo.TopLeft:    edgeBox(b.minX, b.minY, b.midX, b.midY),
		geo.TopRight:   edgeBox(b.midX, b.minY, b.maxX, b.midY),
		geo.LowerLeft:  edgeBox(b.minX, b.midY, b.midX, b.maxY),
		geo.LowerRight: edgeBox(b.midX, b.midY, b.maxX, b.maxY),
	}
}

func (b box) rect() geo.Rectangle {
	return geo.Rectangle{X: b.midX, Y: b.midY, Width: b.maxX - b.minX, Height: b.maxY - b.minY}
}
