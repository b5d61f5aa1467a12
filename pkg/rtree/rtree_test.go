package rtree

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReferenceIndex(t *testing.T) {
	index := NewReferenceIndex()
	assert.NotNil(t, index)
	assert.NotNil(t, index.tree)
	assert.Equal(t, 0, index.Count())
}

func TestInsertSkipsNil(t *testing.T) {
	index := NewReferenceIndex()
	index.Insert(
		models.NewPlace(models.ServiceSet(models.Hotel), 10, 10),
		nil,
		models.NewPlace(models.ServiceSet(models.Coffee), 20, 20),
	)
	assert.Equal(t, 2, index.Count())
}

func TestSearch(t *testing.T) {
	index := NewReferenceIndex()
	index.Insert(
		models.NewPlace(models.ServiceSet(models.Hotel), 50, 50),
		models.NewPlace(models.ServiceSet(models.Coffee), 60, 60),
		models.NewPlace(models.ToBinary([]models.ServiceType{models.Hotel, models.ATM}), 70, 70),
		models.NewPlace(models.ServiceSet(models.Hotel), 500, 500),
	)

	testCases := []struct {
		name     string
		rng      geo.Rectangle
		service  models.ServiceType
		limit    int
		expected int
	}{
		{"box any service", geo.NewRectangle(60, 60, 40, 40), models.AnyService, 0, 3},
		{"box hotels", geo.NewRectangle(60, 60, 40, 40), models.Hotel, 0, 2},
		{"box atm", geo.NewRectangle(60, 60, 40, 40), models.ATM, 0, 1},
		{"limited", geo.NewRectangle(60, 60, 40, 40), models.AnyService, 2, 2},
		{"edge inclusive", geo.NewRectangle(55, 55, 10, 10), models.AnyService, 0, 2},
		{"nothing", geo.NewRectangle(300, 300, 10, 10), models.AnyService, 0, 0},
		{"negative size", geo.Rectangle{X: 60, Y: 60, Width: -40, Height: -40}, models.AnyService, 0, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results := index.Search(tc.rng, tc.service, tc.limit)
			assert.NotNil(t, results)
			assert.Len(t, results, tc.expected)
		})
	}
}

func TestPlaceBounds(t *testing.T) {
	index := NewReferenceIndex()
	index.Insert(models.NewPlace(models.ServiceSet(models.Hotel), 10, 20))

	item := index.items[index.Search(geo.NewRectangle(10, 20, 1, 1), models.AnyService, 0)[0]]
	require.NotNil(t, item)
	bounds := item.Bounds()
	require.NotNil(t, bounds)
	assert.InDelta(t, 10-tolerance, bounds.PointCoord(0), 1e-9)
	assert.InDelta(t, 20-tolerance, bounds.PointCoord(1), 1e-9)
}

func TestRemove(t *testing.T) {
	index := NewReferenceIndex()
	index.Insert(
		models.NewPlace(0, 1, 1),
		models.NewPlace(0, 1.001, 1),
	)

	assert.False(t, index.Remove(2, 2))
	assert.True(t, index.Remove(1, 1))
	assert.False(t, index.Remove(1, 1))
	assert.Equal(t, 1, index.Count())

	results := index.Search(geo.NewRectangle(1, 1, 1, 1), models.AnyService, 0)
	require.Len(t, results, 1)
	assert.Equal(t, 1.001, results[0].X)
}

func TestClear(t *testing.T) {
	index := NewReferenceIndex()
	index.Insert(generateRandomPlaces(100)...)
	assert.Equal(t, 100, index.Count())

	index.Clear()
	assert.Equal(t, 0, index.Count())
	assert.Empty(t, index.Search(geo.NewRectangle(500, 500, 1000, 1000), models.AnyService, 0))
}

func TestConcurrentQueries(t *testing.T) {
	index := NewReferenceIndex()
	index.Insert(generateRandomPlaces(5000)...)

	done := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		go func(seed int64) {
			defer func() { done <- true }()
			r := rand.New(rand.NewSource(seed))
			rng := geo.NewRectangle(r.Float64()*1000, r.Float64()*1000, r.Float64()*200+1, r.Float64()*200+1)
			results := index.Search(rng, models.AnyService, 0)
			assert.NotNil(t, results)
		}(int64(i))
	}

	for i := 0; i < 50; i++ {
		<-done
	}
}

// Helper function to generate random places
func generateRandomPlaces(n int) []*models.Place {
	r := rand.New(rand.NewSource(1))
	places := make([]*models.Place, n)
	for i := 0; i < n; i++ {
		places[i] = models.NewPlace(models.RandomServices(r), r.Float64()*1000, r.Float64()*1000)
	}
	return places
}

func BenchmarkInsert(b *testing.B) {
	sizes := []int{1000, 10000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%d_places", size), func(b *testing.B) {
			places := generateRandomPlaces(size)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				index := NewReferenceIndex()
				index.Insert(places...)
			}
		})
	}
}

func BenchmarkSearch(b *testing.B) {
	index := NewReferenceIndex()
	index.Insert(generateRandomPlaces(100000)...)
	rng := geo.NewRectangle(500, 500, 50, 50)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = index.Search(rng, models.AnyService, 0)
	}
}
