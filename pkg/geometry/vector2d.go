// Package geometry holds the planar primitives shared by the index and the
// force model: a value-type vector and an axis-aligned rectangle.
package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance of every approximate comparison in the package.
const Epsilon = 1e-9

// Vector2D is a point or a displacement. Operations never mutate the
// receiver.
type Vector2D struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

func NewVector(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// Splat returns (s, s), mostly used as a uniform size or scale.
func Splat(s float64) Vector2D {
	return Vector2D{X: s, Y: s}
}

func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector2D) Mul(k float64) Vector2D {
	return Vector2D{X: v.X * k, Y: v.Y * k}
}

// Hadamard is the component-wise product.
func (v Vector2D) Hadamard(o Vector2D) Vector2D {
	return Vector2D{X: v.X * o.X, Y: v.Y * o.Y}
}

func (v Vector2D) Neg() Vector2D {
	return Vector2D{X: -v.X, Y: -v.Y}
}

func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector of v, or the zero vector when v is
// shorter than Epsilon.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l < Epsilon {
		return Vector2D{}
	}
	return Vector2D{X: v.X / l, Y: v.Y / l}
}

// WithLen keeps the heading of v and sets its length. Zero stays zero.
func (v Vector2D) WithLen(length float64) Vector2D {
	return v.Normalize().Mul(length)
}

// Lerp moves from v towards target by the fraction t.
func (v Vector2D) Lerp(target Vector2D, t float64) Vector2D {
	return v.Add(target.Sub(v).Mul(t))
}

// IsFinite is false when a component is NaN or infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Eq compares component-wise within Epsilon.
func (v Vector2D) Eq(o Vector2D) bool {
	return math.Abs(v.X-o.X) <= Epsilon && math.Abs(v.Y-o.Y) <= Epsilon
}
