package quadtree

import (
	"github.com/aukilabs/go-tooling/pkg/errors"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

const (
	ErrTypeAlreadySplit = "quadtree_already_split"
	ErrTypeNotSplit     = "quadtree_not_split"
)

// Both faults are programming errors inside the package: they are raised
// with panic and never returned.

func alreadySplitFault(depth int, rect geometry.Rectangle) error {
	return errors.New("quadtree node already has children").
		WithType(ErrTypeAlreadySplit).
		WithTag("depth", depth).
		WithTag("rect", rect.String())
}

func notSplitFault(depth int, rect geometry.Rectangle) error {
	return errors.New("quadtree node has no children to distribute into").
		WithType(ErrTypeNotSplit).
		WithTag("depth", depth).
		WithTag("rect", rect.String())
}
