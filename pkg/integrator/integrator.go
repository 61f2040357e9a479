// Package integrator advances agent positions over a fixed timestep.
package integrator

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

type Kind string

const (
	KindEuler Kind = "euler"
	KindRK4   Kind = "rk4"
)

// Integrator turns a velocity and a constant acceleration into a
// displacement over h seconds.
type Integrator interface {
	Kind() Kind
	Displacement(v, a geometry.Vector2D, h float64) geometry.Vector2D
	Step(position, velocity, acceleration geometry.Vector2D, h float64) (geometry.Vector2D, geometry.Vector2D)
}

// New returns the integrator registered under kind.
func New(kind Kind) (Integrator, error) {
	switch kind {
	case KindEuler:
		return Euler{}, nil
	case KindRK4:
		return RK4{}, nil
	default:
		return nil, fmt.Errorf("unknown integrator %q", kind)
	}
}

// Euler is the explicit Euler scheme: dp = v*h.
type Euler struct{}

func (Euler) Kind() Kind { return KindEuler }

func (Euler) Displacement(v, _ geometry.Vector2D, h float64) geometry.Vector2D {
	return v.Mul(h)
}

func (e Euler) Step(position, velocity, acceleration geometry.Vector2D, h float64) (geometry.Vector2D, geometry.Vector2D) {
	return step(e, position, velocity, acceleration, h)
}

// RK4 is the classic 4th order Runge-Kutta scheme applied to
// dp/dt = v0 + a*t. With a constant acceleration it gives the exact
// displacement v0*h + a*h²/2.
type RK4 struct{}

func (RK4) Kind() Kind { return KindRK4 }

func (RK4) Displacement(v, a geometry.Vector2D, h float64) geometry.Vector2D {
	velocityAt := func(t float64) geometry.Vector2D { return v.Add(a.Mul(t)) }
	k1 := velocityAt(0)
	k2 := velocityAt(h / 2)
	k3 := velocityAt(h / 2)
	k4 := velocityAt(h)
	return k1.Add(k2.Mul(2)).Add(k3.Mul(2)).Add(k4).Mul(h / 6)
}

func (r RK4) Step(position, velocity, acceleration geometry.Vector2D, h float64) (geometry.Vector2D, geometry.Vector2D) {
	return step(r, position, velocity, acceleration, h)
}

func step(i Integrator, position, velocity, acceleration geometry.Vector2D, h float64) (geometry.Vector2D, geometry.Vector2D) {
	return position.Add(i.Displacement(velocity, acceleration, h)), velocity.Add(acceleration.Mul(h))
}
