// Package rtree wraps an R-Tree from rtreego as a reference index for places.
// It answers the same queries as the quadtree and is used to cross-check
// quadtree results in tests and benchmarks.
package rtree

import (
	"sync"

	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	"github.com/dhconnelly/rtreego"
)

const (
	tolerance   = 0.01
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// spatialPlace wraps a place to implement rtreego.Spatial
type spatialPlace struct {
	*models.Place
	rect *rtreego.Rect
}

var _ rtreego.Spatial = (*spatialPlace)(nil)

func (sp *spatialPlace) Bounds() *rtreego.Rect {
	return sp.rect
}

// ReferenceIndex is a thread-safe R-Tree index of places.
type ReferenceIndex struct {
	tree  *rtreego.Rtree
	mu    sync.RWMutex
	items map[*models.Place]*spatialPlace
}

// NewReferenceIndex creates an empty reference index.
func NewReferenceIndex() *ReferenceIndex {
	return &ReferenceIndex{
		tree:  rtreego.NewTree(dimensions, minChildren, maxChildren),
		items: make(map[*models.Place]*spatialPlace),
	}
}

// Insert adds places to the index. Nil places are skipped.
func (r *ReferenceIndex) Insert(places ...*models.Place) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range places {
		if p == nil {
			continue
		}
		item := &spatialPlace{Place: p, rect: rtreego.Point{p.X, p.Y}.ToRect(tolerance)}
		r.tree.Insert(item)
		r.items[p] = item
	}
}

// Remove deletes the place located exactly at (x, y).
func (r *ReferenceIndex) Remove(x, y float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, found := range r.tree.SearchIntersect(rtreego.Point{x, y}.ToRect(tolerance)) {
		item, ok := found.(*spatialPlace)
		if !ok || !item.At(x, y) {
			continue
		}
		if r.tree.Delete(item) {
			delete(r.items, item.Place)
			return true
		}
	}
	return false
}

// Search returns the places inside rng offering service (any service when
// service is models.AnyService). limit <= 0 means no limit. The order of the
// results is unspecified.
func (r *ReferenceIndex) Search(rng geo.Rectangle, service models.ServiceType, limit int) []*models.Place {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rng = geo.NewRectangle(rng.X, rng.Y, rng.Width, rng.Height)
	// Widen the query by the item tolerance so points on the query edge are
	// returned by the R-Tree; the exact test below filters them again.
	bounds, err := rtreego.NewRect(
		rtreego.Point{rng.Left() - tolerance, rng.Top() - tolerance},
		[]float64{rng.Width + 2*tolerance, rng.Height + 2*tolerance},
	)
	if err != nil {
		return []*models.Place{}
	}

	places := make([]*models.Place, 0)
	for _, result := range r.tree.SearchIntersect(bounds) {
		item, ok := result.(*spatialPlace)
		if !ok || item.Place == nil {
			continue
		}
		if !rng.Contains(item.X, item.Y) {
			continue
		}
		if service != models.AnyService && !item.HasService(service) {
			continue
		}
		places = append(places, item.Place)
		if limit > 0 && len(places) >= limit {
			break
		}
	}
	return places
}

// Count returns the number of indexed places.
func (r *ReferenceIndex) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree.Size()
}

// Clear removes all places from the index.
func (r *ReferenceIndex) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	r.items = make(map[*models.Place]*spatialPlace)
}
