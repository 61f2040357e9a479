package geometry

import (
	"fmt"
	"math"
)

// Quadrant indices of the array returned by Rectangle.Partition.
// Y grows upward, so "bottom" is the half closest to Min.Y.
const (
	BottomLeft = iota
	BottomRight
	TopLeft
	TopRight
)

// Rectangle is an axis-aligned rectangle, Min.X <= Max.X and Min.Y <= Max.Y.
// Like Vector2D it is a value type: every transformation returns a new Rectangle.
type Rectangle struct {
	Min Vector2D `json:"min" toml:"min"`
	Max Vector2D `json:"max" toml:"max"`
}

// NewRectangle builds a rectangle from two opposite corners in any order.
func NewRectangle(a, b Vector2D) Rectangle {
	return Rectangle{
		Min: Vector2D{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Vector2D{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// RectangleFromCenter builds the rectangle of the given size centered on center.
func RectangleFromCenter(center, size Vector2D) Rectangle {
	half := size.Mul(0.5)
	return NewRectangle(center.Sub(half), center.Add(half))
}

func (r Rectangle) String() string {
	return fmt.Sprintf("[%s..%s]", r.Min, r.Max)
}

// Size returns the diagonal Max - Min.
func (r Rectangle) Size() Vector2D {
	return r.Max.Sub(r.Min)
}

func (r Rectangle) Width() float64 {
	return r.Max.X - r.Min.X
}

func (r Rectangle) Height() float64 {
	return r.Max.Y - r.Min.Y
}

func (r Rectangle) Area() float64 {
	return r.Width() * r.Height()
}

// Center returns the midpoint of the rectangle.
func (r Rectangle) Center() Vector2D {
	return r.Min.Add(r.Size().Mul(0.5))
}

// ContainsPoint reports whether p lies strictly inside r.
// Points on the border are outside.
func (r Rectangle) ContainsPoint(p Vector2D) bool {
	return r.Min.X < p.X && p.X < r.Max.X && r.Min.Y < p.Y && p.Y < r.Max.Y
}

// Contains reports whether the four corners of inner lie strictly inside r.
// A rectangle touching an edge of r is not contained, and no rectangle
// contains itself: a value sitting on a shared edge belongs to neither side.
func (r Rectangle) Contains(inner Rectangle) bool {
	return r.ContainsPoint(inner.Min) &&
		r.ContainsPoint(Vector2D{X: inner.Max.X, Y: inner.Min.Y}) &&
		r.ContainsPoint(Vector2D{X: inner.Min.X, Y: inner.Max.Y}) &&
		r.ContainsPoint(inner.Max)
}

// Overlaps reports whether r and other share a region of positive area.
func (r Rectangle) Overlaps(other Rectangle) bool {
	return r.Min.X < other.Max.X && other.Min.X < r.Max.X &&
		r.Min.Y < other.Max.Y && other.Min.Y < r.Max.Y
}

// Intersection returns the common part of r and other.
// ok is false when they do not overlap.
func (r Rectangle) Intersection(other Rectangle) (Rectangle, bool) {
	if !r.Overlaps(other) {
		return Rectangle{}, false
	}
	return Rectangle{
		Min: Vector2D{X: math.Max(r.Min.X, other.Min.X), Y: math.Max(r.Min.Y, other.Min.Y)},
		Max: Vector2D{X: math.Min(r.Max.X, other.Max.X), Y: math.Min(r.Max.Y, other.Max.Y)},
	}, true
}

// Partition splits r into 4 equal quadrants around its midpoint, always in
// the order BottomLeft, BottomRight, TopLeft, TopRight.
func (r Rectangle) Partition() [4]Rectangle {
	c := r.Center()
	return [4]Rectangle{
		BottomLeft:  {Min: r.Min, Max: c},
		BottomRight: {Min: Vector2D{X: c.X, Y: r.Min.Y}, Max: Vector2D{X: r.Max.X, Y: c.Y}},
		TopLeft:     {Min: Vector2D{X: r.Min.X, Y: c.Y}, Max: Vector2D{X: c.X, Y: r.Max.Y}},
		TopRight:    {Min: c, Max: r.Max},
	}
}

// Magnify returns a rectangle with the same center whose extents are scaled
// component-wise by factor. Used to build detection windows around an agent.
func (r Rectangle) Magnify(factor Vector2D) Rectangle {
	return RectangleFromCenter(r.Center(), r.Size().Hadamard(factor))
}

// Translate moves the rectangle by offset.
func (r Rectangle) Translate(offset Vector2D) Rectangle {
	return Rectangle{Min: r.Min.Add(offset), Max: r.Max.Add(offset)}
}

// Shrink moves every edge inward by margin. Margins larger than half the
// extent collapse the rectangle to its center on that axis.
func (r Rectangle) Shrink(margin float64) Rectangle {
	c := r.Center()
	half := r.Size().Mul(0.5)
	hx := math.Max(half.X-margin, 0)
	hy := math.Max(half.Y-margin, 0)
	return Rectangle{
		Min: Vector2D{X: c.X - hx, Y: c.Y - hy},
		Max: Vector2D{X: c.X + hx, Y: c.Y + hy},
	}
}

// Eq reports whether both corners match within Epsilon.
func (r Rectangle) Eq(other Rectangle) bool {
	return r.Min.Eq(other.Min) && r.Max.Eq(other.Max)
}
