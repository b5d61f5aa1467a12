// Package quadtree implements a bounded-capacity point quadtree over places.
//
// Each node stores up to capacity places. When a leaf is full the next insert
// splits it into four quadrants and the new place is routed into one of them;
// places already stored in the split node stay where they are. Nodes never
// merge back, even when removals leave them empty.
//
// A Tree is not safe for concurrent use.
package quadtree

import (
	"errors"
	"fmt"

	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	"github.com/1F47E/geo-index-quadtree/pkg/plist"
)

var (
	ErrInvalidCapacity = errors.New("node capacity must be at least 1")
	ErrNotFound        = errors.New("place not found")
	ErrMoved           = errors.New("edit must not change place coordinates")
)

type node struct {
	bounds   box
	points   *plist.BoundedList[*models.Place]
	children *[4]*node
}

func newNode(b box, capacity int) *node {
	return &node{
		bounds: b,
		points: plist.New[*models.Place](capacity),
	}
}

func (n *node) divided() bool {
	return n.children != nil
}

// subdivide creates the four children. Stored points are not moved.
func (n *node) subdivide(capacity int) {
	quads := n.bounds.split()
	n.children = &[4]*node{
		newNode(quads[geo.TopLeft], capacity),
		newNode(quads[geo.TopRight], capacity),
		newNode(quads[geo.LowerLeft], capacity),
		newNode(quads[geo.LowerRight], capacity),
	}
}

// Tree is a quadtree rooted at fixed bounds.
type Tree struct {
	root     *node
	capacity int
	size     int

	// lastLeaf is the leaf that took the most recent insert. It is only a
	// shortcut and is re-validated before every use.
	lastLeaf *node
}

// New creates an empty tree covering bounds whose nodes hold up to capacity
// places before splitting.
func New(bounds geo.Rectangle, capacity int) (*Tree, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	bounds = geo.NewRectangle(bounds.X, bounds.Y, bounds.Width, bounds.Height)
	return &Tree{
		root:     newNode(newBox(bounds), capacity),
		capacity: capacity,
	}, nil
}

// Bounds returns the area covered by the tree.
func (t *Tree) Bounds() geo.Rectangle {
	return t.root.bounds.rect()
}

// Capacity returns the per-node capacity.
func (t *Tree) Capacity() int {
	return t.capacity
}

// Len returns the number of places stored in the tree.
func (t *Tree) Len() int {
	return t.size
}

// Insert stores p in the tree. It returns false if p lies outside the tree's
// bounds.
func (t *Tree) Insert(p *models.Place) bool {
	if p == nil {
		return false
	}

	// Clustered inserts usually land in the same leaf as the previous one.
	if leaf := t.lastLeaf; leaf != nil && !leaf.divided() &&
		leaf.bounds.contains(p.X, p.Y) && leaf.points.Append(p) {
		t.size++
		return true
	}

	current := t.root
	for current != nil {
		if !current.bounds.contains(p.X, p.Y) {
			return false
		}

		if !current.divided() {
			if current.points.Append(p) {
				t.lastLeaf = current
				t.size++
				return true
			}
			current.subdivide(t.capacity)
		}

		current = current.children[current.bounds.quadrant(p.X, p.Y)]
	}
	return false
}

// Search returns up to limit places inside rng. When service is not
// models.AnyService only places offering it are returned. The result is never
// nil; it is empty when nothing matches or limit is not positive.
//
// Children are visited top-left, top-right, lower-left, lower-right, so a
// truncated result is a prefix of that traversal, not the nearest places.
func (t *Tree) Search(rng geo.Rectangle, service models.ServiceType, limit int) []*models.Place {
	if limit <= 0 {
		return []*models.Place{}
	}
	rng = geo.NewRectangle(rng.X, rng.Y, rng.Width, rng.Height)
	found := make([]*models.Place, 0, min(limit, 64))
	return t.root.search(newBox(rng), service, limit, found)
}

func (n *node) search(q box, service models.ServiceType, limit int, found []*models.Place) []*models.Place {
	if len(found) >= limit || !q.intersects(n.bounds) {
		return found
	}

	n.points.Each(func(_ int, p *models.Place) bool {
		if q.contains(p.X, p.Y) && (service == models.AnyService || p.HasService(service)) {
			found = append(found, p)
		}
		return len(found) < limit
	})

	if n.divided() {
		for _, child := range n.children {
			found = child.search(q, service, limit, found)
		}
	}
	return found
}

// locate finds the node and index holding the place at exactly (x, y). A
// point on a dividing line may sit in either neighbour, so every child whose
// bounds contain it is visited.
func (n *node) locate(x, y float64) (*node, int) {
	if !n.bounds.contains(x, y) {
		return nil, -1
	}

	idx := -1
	n.points.Each(func(i int, p *models.Place) bool {
		if p.At(x, y) {
			idx = i
			return false
		}
		return true
	})
	if idx >= 0 {
		return n, idx
	}

	if n.divided() {
		for _, child := range n.children {
			if holder, i := child.locate(x, y); holder != nil {
				return holder, i
			}
		}
	}
	return nil, -1
}

// Find returns the place located exactly at (x, y).
func (t *Tree) Find(x, y float64) (*models.Place, bool) {
	holder, i := t.root.locate(x, y)
	if holder == nil {
		return nil, false
	}
	p, _ := holder.points.Get(i)
	return p, true
}

// Remove deletes the place located exactly at (x, y). It returns false if no
// such place is stored. The tree keeps its shape: emptied nodes are not
// merged.
func (t *Tree) Remove(x, y float64) bool {
	holder, i := t.root.locate(x, y)
	if holder == nil {
		return false
	}
	if !holder.points.RemoveAt(i) {
		return false
	}
	t.size--
	return true
}

// Edit applies fn to the place located exactly at (x, y). fn may change the
// place's services but not its coordinates; a moved place is put back and
// ErrMoved is returned, joined with any error from fn. ErrNotFound is returned when there is no place at
// (x, y).
func (t *Tree) Edit(x, y float64, fn func(p *models.Place) error) error {
	p, ok := t.Find(x, y)
	if !ok {
		return fmt.Errorf("%w at (%g, %g)", ErrNotFound, x, y)
	}
	err := fn(p)
	if !p.At(x, y) {
		p.X, p.Y = x, y
		return errors.Join(ErrMoved, err)
	}
	return err
}
