package quadtree

// Number is the set of types Aggregate can sum.
type Number interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Aggregate sums fn over n and all of its descendants.
func Aggregate[K comparable, V Value[K], T Number](n *Node[K, V], fn func(*Node[K, V]) T) T {
	var total T
	n.walk(func(node *Node[K, V]) bool {
		total += fn(node)
		return true
	})
	return total
}

// Stats is a snapshot of the tree shape.
type Stats struct {
	Nodes    int `json:"nodes"`
	Leaves   int `json:"leaves"`
	Values   int `json:"values"`
	MaxDepth int `json:"max_depth"`
}

func (t *Quadtree[K, V]) Stats() Stats {
	var s Stats
	t.root.walk(func(n *Node[K, V]) bool {
		s.Nodes++
		s.Values += len(n.values)
		if n.IsLeaf() {
			s.Leaves++
		}
		if n.depth > s.MaxDepth {
			s.MaxDepth = n.depth
		}
		return true
	})
	return s
}
