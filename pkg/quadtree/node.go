package quadtree

import (
	"iter"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

// Node is one cell of the quadtree. A node is a leaf iff it has no children;
// when it has children there are always exactly 4 of them, in the order of
// geometry.Rectangle.Partition.
//
// A value stored directly in a node is either not fully contained by any of
// its children (it straddles a partition line), or the node is a leaf. A
// leaf fills up to Threshold values before it splits; a split hands the
// inserted value to the new child as well, so a leaf at depth d never holds
// more than Threshold+d values (unbounded at MaxDepth).
type Node[K comparable, V Value[K]] struct {
	rect     geometry.Rectangle
	depth    int
	children *[4]Node[K, V]
	values   map[K]V
	opts     *Options
}

func newNode[K comparable, V Value[K]](rect geometry.Rectangle, depth int, opts *Options) Node[K, V] {
	return Node[K, V]{
		rect:   rect,
		depth:  depth,
		values: make(map[K]V),
		opts:   opts,
	}
}

// Rect returns the region covered by the node.
func (n *Node[K, V]) Rect() geometry.Rectangle {
	return n.rect
}

// Depth is 0 for the root.
func (n *Node[K, V]) Depth() int {
	return n.depth
}

func (n *Node[K, V]) IsLeaf() bool {
	return n.children == nil
}

// Children returns the 4 children, or nil for a leaf.
func (n *Node[K, V]) Children() []*Node[K, V] {
	if n.children == nil {
		return nil
	}
	out := make([]*Node[K, V], len(n.children))
	for i := range n.children {
		out[i] = &n.children[i]
	}
	return out
}

// Len is the number of values held directly by this node.
func (n *Node[K, V]) Len() int {
	return len(n.values)
}

// Has reports whether the node directly holds a value with this key.
func (n *Node[K, V]) Has(key K) bool {
	_, ok := n.values[key]
	return ok
}

// Get returns the value held directly under key.
func (n *Node[K, V]) Get(key K) (V, bool) {
	v, ok := n.values[key]
	return v, ok
}

// Direct yields the values held by this node only.
func (n *Node[K, V]) Direct() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range n.values {
			if !yield(v) {
				return
			}
		}
	}
}

// Values lazily yields every value stored at this node or any descendant, in
// no particular order. Each call returns a fresh sequence; mutating the tree
// while ranging over it is not supported.
func (n *Node[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		n.yieldAll(yield)
	}
}

func (n *Node[K, V]) yieldAll(yield func(V) bool) bool {
	for _, v := range n.values {
		if !yield(v) {
			return false
		}
	}
	if n.children != nil {
		for i := range n.children {
			if !n.children[i].yieldAll(yield) {
				return false
			}
		}
	}
	return true
}

// Count returns the number of values in the subtree rooted at n.
func (n *Node[K, V]) Count() int {
	return Aggregate(n, func(node *Node[K, V]) int { return len(node.values) })
}

// add stores v in the subtree. It only descends through nodes that were
// already split; a full leaf splits and v moves down at most one level, so
// a single insert never splits twice.
func (n *Node[K, V]) add(v V, index map[K]*Node[K, V]) {
	if n.IsLeaf() {
		if n.depth >= n.opts.MaxDepth || len(n.values) < n.opts.Threshold {
			n.store(v, index)
			return
		}
		n.createChildren()
		n.distributeValues(index)
		if child := n.childContaining(v.Bounds()); child != nil {
			child.store(v, index)
			return
		}
		n.store(v, index)
		return
	}

	if child := n.childContaining(v.Bounds()); child != nil {
		child.add(v, index)
		return
	}
	n.store(v, index)
}

func (n *Node[K, V]) store(v V, index map[K]*Node[K, V]) {
	n.values[v.Key()] = v
	index[v.Key()] = n
}

// childContaining returns the unique child whose rectangle fully contains r.
func (n *Node[K, V]) childContaining(r geometry.Rectangle) *Node[K, V] {
	if n.children == nil {
		return nil
	}
	for i := range n.children {
		if n.children[i].rect.Contains(r) {
			return &n.children[i]
		}
	}
	return nil
}

func (n *Node[K, V]) createChildren() {
	if n.children != nil {
		panic(alreadySplitFault(n.depth, n.rect))
	}
	rects := n.rect.Partition()
	var children [4]Node[K, V]
	for i, r := range rects {
		children[i] = newNode[K, V](r, n.depth+1, n.opts)
	}
	n.children = &children
}

// distributeValues pushes every value one level down into the child that
// fully contains it. Straddling values stay here.
func (n *Node[K, V]) distributeValues(index map[K]*Node[K, V]) {
	if n.children == nil {
		panic(notSplitFault(n.depth, n.rect))
	}
	for key, v := range n.values {
		if child := n.childContaining(v.Bounds()); child != nil {
			delete(n.values, key)
			child.store(v, index)
		}
	}
}

func (n *Node[K, V]) search(v V) *Node[K, V] {
	if n.Has(v.Key()) {
		return n
	}
	if child := n.childContaining(v.Bounds()); child != nil {
		return child.search(v)
	}
	return nil
}

func (n *Node[K, V]) queryRegion(r geometry.Rectangle) *Node[K, V] {
	if child := n.childContaining(r); child != nil {
		return child.queryRegion(r)
	}
	return n
}

// clean collapses, bottom-up, every subtree whose children are all empty
// leaves and returns the number of collapsed nodes.
func (n *Node[K, V]) clean() int {
	if n.children == nil {
		return 0
	}
	collapsed := 0
	empty := true
	for i := range n.children {
		child := &n.children[i]
		collapsed += child.clean()
		if !child.IsLeaf() || len(child.values) > 0 {
			empty = false
		}
	}
	if empty {
		n.children = nil
		collapsed++
	}
	return collapsed
}

// walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the visited node.
func (n *Node[K, V]) walk(fn func(*Node[K, V]) bool) {
	if !fn(n) || n.children == nil {
		return
	}
	for i := range n.children {
		n.children[i].walk(fn)
	}
}
