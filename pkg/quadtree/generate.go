package quadtree

import (
	"math/rand"

	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
)

// DefaultMapSize is the side of the square map used by the console and the
// benchmarks.
const DefaultMapSize = 10_000_000

// DefaultBounds returns the DefaultMapSize square with its top-left corner at
// the origin.
func DefaultBounds() geo.Rectangle {
	return geo.NewRectangle(DefaultMapSize/2, DefaultMapSize/2, DefaultMapSize, DefaultMapSize)
}

// IdealCapacity returns the node capacity that lets totalPlaces uniformly
// spread places fill a tree of the given depth: totalPlaces / 4^depth. The
// result is never below 1.
func IdealCapacity(totalPlaces, desiredDepth int) int {
	if desiredDepth < 0 {
		desiredDepth = 0
	}
	capacity := totalPlaces
	for i := 0; i < desiredDepth && capacity > 0; i++ {
		capacity /= 4
	}
	return max(capacity, 1)
}

// GenerateRandomData inserts n random places into t. A quarter of n is
// placed in each of the root's quadrants and the remainder anywhere on the
// map. Every place gets one random service. It returns the number of places
// inserted.
func GenerateRandomData(t *Tree, n int, r *rand.Rand) int {
	if n <= 0 {
		return 0
	}
	bounds := t.Bounds()
	inserted := 0

	perQuadrant := n / 4
	for _, quad := range bounds.Quadrants() {
		for i := 0; i < perQuadrant; i++ {
			if t.Insert(randomPlace(quad, r)) {
				inserted++
			}
		}
	}

	for i := 0; i < n%4; i++ {
		if t.Insert(randomPlace(bounds, r)) {
			inserted++
		}
	}
	return inserted
}

// RandomPlaces returns n places spread like GenerateRandomData without
// inserting them anywhere.
func RandomPlaces(bounds geo.Rectangle, n int, r *rand.Rand) []*models.Place {
	places := make([]*models.Place, 0, max(n, 0))
	perQuadrant := n / 4
	for _, quad := range bounds.Quadrants() {
		for i := 0; i < perQuadrant; i++ {
			places = append(places, randomPlace(quad, r))
		}
	}
	for i := 0; i < n%4 && n > 0; i++ {
		places = append(places, randomPlace(bounds, r))
	}
	return places
}

func randomPlace(area geo.Rectangle, r *rand.Rand) *models.Place {
	x := area.Left() + r.Float64()*area.Width
	y := area.Top() + r.Float64()*area.Height
	return models.NewPlace(models.RandomServices(r), x, y)
}
