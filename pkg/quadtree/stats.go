package quadtree

// Stats describes the shape of a tree.
type Stats struct {
	Places        int `json:"places"`
	Nodes         int `json:"nodes"`
	Leaves        int `json:"leaves"`
	MaxDepth      int `json:"max_depth"`
	MaxNodePlaces int `json:"max_node_places"`
}

// Stats walks the whole tree. The root is at depth 0.
func (t *Tree) Stats() Stats {
	var s Stats
	t.root.walk(0, func(n *node, depth int) {
		s.Nodes++
		s.Places += n.points.Len()
		if !n.divided() {
			s.Leaves++
		}
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		if n.points.Len() > s.MaxNodePlaces {
			s.MaxNodePlaces = n.points.Len()
		}
	})
	return s
}

// NodeCount returns the number of nodes, the root included.
func (t *Tree) NodeCount() int {
	count := 0
	t.root.walk(0, func(*node, int) { count++ })
	return count
}

// Depth returns the depth of the deepest node.
func (t *Tree) Depth() int {
	return t.Stats().MaxDepth
}

func (n *node) walk(depth int, fn func(n *node, depth int)) {
	fn(n, depth)
	if n.divided() {
		for _, child := range n.children {
			child.walk(depth+1, fn)
		}
	}
}
