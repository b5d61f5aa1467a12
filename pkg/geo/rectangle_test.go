package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRectangleNormalisesExtents(t *testing.T) {
	r := NewRectangle(10, 20, -4, -6)
	assert.Equal(t, 4.0, r.Width)
	assert.Equal(t, 6.0, r.Height)
	assert.Equal(t, 8.0, r.Left())
	assert.Equal(t, 12.0, r.Right())
	assert.Equal(t, 17.0, r.Top())
	assert.Equal(t, 23.0, r.Bottom())
}

func TestContains(t *testing.T) {
	r := NewRectangle(100, 100, 200, 200)

	testCases := []struct {
		name     string
		x, y     float64
		expected bool
	}{
		{"centre", 100, 100, true},
		{"top-left corner", 0, 0, true},
		{"lower-right corner", 200, 200, true},
		{"left edge", 0, 150, true},
		{"just outside right", 200.0001, 100, false},
		{"outside both", 201, 201, false},
		{"negative", -1, 50, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.Contains(tc.x, tc.y))
		})
	}
}

func TestZeroSizeRectangleContainsOnlyItsCentre(t *testing.T) {
	r := PointRect(5, 7)
	assert.True(t, r.Contains(5, 7))
	assert.False(t, r.Contains(5, 7.000001))
	assert.False(t, r.Contains(4.999999, 7))
}

func TestIntersects(t *testing.T) {
	r := NewRectangle(0, 0, 10, 10)

	testCases := []struct {
		name     string
		other    Rectangle
		expected bool
	}{
		{"same", NewRectangle(0, 0, 10, 10), true},
		{"inside", NewRectangle(1, 1, 2, 2), true},
		{"enclosing", NewRectangle(0, 0, 100, 100), true},
		{"overlap corner", NewRectangle(6, 6, 4, 4), true},
		{"touching edge", NewRectangle(10, 0, 10, 10), true},
		{"touching corner", NewRectangle(10, 10, 10, 10), true},
		{"point on edge", PointRect(5, 0), true},
		{"disjoint right", NewRectangle(20, 0, 4, 4), false},
		{"disjoint above", NewRectangle(0, -20, 4, 4), false},
		{"disjoint below", NewRectangle(0, 5.5, 0.5, 0.5), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.Intersects(tc.other))
			assert.Equal(t, tc.expected, tc.other.Intersects(r), "intersection must be symmetric")
		})
	}
}

func TestQuadrantsPartitionParent(t *testing.T) {
	r := NewRectangle(0, 0, 100, 100)
	q := r.Quadrants()

	assert.Equal(t, NewRectangle(-25, -25, 50, 50), q[TopLeft])
	assert.Equal(t, NewRectangle(25, -25, 50, 50), q[TopRight])
	assert.Equal(t, NewRectangle(-25, 25, 50, 50), q[LowerLeft])
	assert.Equal(t, NewRectangle(25, 25, 50, 50), q[LowerRight])

	for i, child := range q {
		assert.Equal(t, r.Width/2, child.Width, "quadrant %d", i)
		assert.Equal(t, r.Height/2, child.Height, "quadrant %d", i)
	}
	assert.Equal(t, q[TopLeft].Right(), q[TopRight].Left())
	assert.Equal(t, q[TopLeft].Bottom(), q[LowerLeft].Top())
}

func TestQuadrantOf(t *testing.T) {
	r := NewRectangle(0, 0, 100, 100)

	testCases := []struct {
		name     string
		x, y     float64
		expected Quadrant
	}{
		{"top-left", -10, -10, TopLeft},
		{"top-right", 10, -10, TopRight},
		{"lower-left", -10, 10, LowerLeft},
		{"lower-right", 10, 10, LowerRight},
		{"centre", 0, 0, LowerRight},
		{"vertical centre line", 0, -10, TopRight},
		{"horizontal centre line", -10, 0, LowerLeft},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := r.QuadrantOf(tc.x, tc.y)
			assert.Equal(t, tc.expected, q)
			assert.True(t, r.Quadrant(q).Contains(tc.x, tc.y), "routed quadrant must contain the point")
		})
	}
}

func TestQuadrantString(t *testing.T) {
	assert.Equal(t, "top-left", TopLeft.String())
	assert.Equal(t, "lower-right", LowerRight.String())
	assert.Equal(t, "Quadrant(7)", Quadrant(7).String())
}
