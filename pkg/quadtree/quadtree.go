// Package quadtree implements an adaptive region quadtree that indexes
// rectangular values by their key. Leaves split once they hold Threshold
// values, values straddling a partition line stay in the parent, and empty
// subtrees collapse again through CleanStructure.
//
// A Quadtree is not safe for concurrent mutation. Concurrent readers are
// fine as long as no writer runs at the same time.
package quadtree

import (
	"iter"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

const (
	// DefaultThreshold is the number of values a leaf holds before it splits.
	DefaultThreshold = 16
	// DefaultMaxDepth bounds the depth of the tree, the root being at depth 0.
	DefaultMaxDepth = 8
)

// Value is anything the tree can index: a stable identity and the
// rectangle it occupies.
type Value[K comparable] interface {
	Key() K
	Bounds() geometry.Rectangle
}

type Options struct {
	Threshold int
	MaxDepth  int
}

type Option func(*Options)

// WithThreshold sets the split threshold. Values below 1 are ignored.
func WithThreshold(n int) Option {
	return func(o *Options) {
		if n >= 1 {
			o.Threshold = n
		}
	}
}

// WithMaxDepth sets the maximum depth. Negative values are ignored.
func WithMaxDepth(d int) Option {
	return func(o *Options) {
		if d >= 0 {
			o.MaxDepth = d
		}
	}
}

// Quadtree owns the root node and a key index pointing at the node that
// currently stores each value.
type Quadtree[K comparable, V Value[K]] struct {
	bounds geometry.Rectangle
	root   *Node[K, V]
	index  map[K]*Node[K, V]
	opts   Options
}

// New creates an empty tree covering bounds.
func New[K comparable, V Value[K]](bounds geometry.Rectangle, opts ...Option) *Quadtree[K, V] {
	t := &Quadtree[K, V]{
		bounds: bounds,
		index:  make(map[K]*Node[K, V]),
		opts: Options{
			Threshold: DefaultThreshold,
			MaxDepth:  DefaultMaxDepth,
		},
	}
	for _, opt := range opts {
		opt(&t.opts)
	}
	root := newNode[K, V](bounds, 0, &t.opts)
	t.root = &root
	return t
}

func (t *Quadtree[K, V]) Bounds() geometry.Rectangle {
	return t.bounds
}

func (t *Quadtree[K, V]) Root() *Node[K, V] {
	return t.root
}

func (t *Quadtree[K, V]) Options() Options {
	return t.opts
}

// Len is the number of values in the tree.
func (t *Quadtree[K, V]) Len() int {
	return len(t.index)
}

// Insert adds v to the tree and reports whether it was accepted. A value
// whose bounds are not strictly inside the tree bounds is rejected and the
// tree is left unchanged. Inserting a key that is already present replaces
// the previous value.
func (t *Quadtree[K, V]) Insert(v V) bool {
	if !t.bounds.Contains(v.Bounds()) {
		return false
	}
	t.Delete(v.Key())
	t.root.add(v, t.index)
	return true
}

// Delete removes the value stored under key and returns it.
// The structure is not collapsed; see CleanStructure.
func (t *Quadtree[K, V]) Delete(key K) (V, bool) {
	node, ok := t.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	v := node.values[key]
	delete(node.values, key)
	delete(t.index, key)
	return v, true
}

// DeleteValue removes the value sharing the key of v.
func (t *Quadtree[K, V]) DeleteValue(v V) (V, bool) {
	return t.Delete(v.Key())
}

// Find returns the node currently storing key, or nil.
func (t *Quadtree[K, V]) Find(key K) *Node[K, V] {
	return t.index[key]
}

// Get returns the stored value for key.
func (t *Quadtree[K, V]) Get(key K) (V, bool) {
	node, ok := t.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return node.Get(key)
}

// Search descends from the root following the bounds of v and returns the
// node holding its key, or nil. Unlike Find it relies on the bounds of v
// matching the stored ones, so a stale rectangle may miss.
func (t *Quadtree[K, V]) Search(v V) *Node[K, V] {
	return t.root.search(v)
}

// QueryRegion returns the deepest node whose rectangle fully contains r,
// or nil when r is not strictly inside the tree bounds.
func (t *Quadtree[K, V]) QueryRegion(r geometry.Rectangle) *Node[K, V] {
	if !t.bounds.Contains(r) {
		return nil
	}
	return t.root.queryRegion(r)
}

// Region yields the candidate values for a window: every value under the
// deepest node containing the window, or the whole tree when the window
// reaches outside the bounds. Candidates are a superset of the values
// overlapping the window; callers filter them.
func (t *Quadtree[K, V]) Region(r geometry.Rectangle) iter.Seq[V] {
	node := t.QueryRegion(r)
	if node == nil {
		node = t.root
	}
	return node.Values()
}

// All yields every value in the tree.
func (t *Quadtree[K, V]) All() iter.Seq[V] {
	return t.root.Values()
}

// Update stores v in place when it still fits its current node and no child
// of that node fully contains it, and reports whether it did. It never
// splits. When it returns false the tree is unchanged
// and the caller has to Delete and Insert.
func (t *Quadtree[K, V]) Update(v V) bool {
	node, ok := t.index[v.Key()]
	if !ok {
		return false
	}
	b := v.Bounds()
	if !t.bounds.Contains(b) {
		return false
	}
	if node != t.root && !node.rect.Contains(b) {
		return false
	}
	if node.childContaining(b) != nil {
		return false
	}
	node.values[v.Key()] = v
	return true
}

// CleanStructure collapses every subtree whose children are all empty
// leaves, bottom-up, and returns the number of collapsed nodes. Calling it
// twice in a row is a no-op the second time.
func (t *Quadtree[K, V]) CleanStructure() int {
	return t.root.clean()
}

// Walk visits every node depth-first, parents before children. Returning
// false from fn skips the children of that node.
func (t *Quadtree[K, V]) Walk(fn func(*Node[K, V]) bool) {
	t.root.walk(fn)
}

// Clear drops every value and every node below the root.
func (t *Quadtree[K, V]) Clear() {
	root := newNode[K, V](t.bounds, 0, &t.opts)
	t.root = &root
	t.index = make(map[K]*Node[K, V])
}
