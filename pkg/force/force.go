// Package force computes the per-agent velocity correction of one tick:
// separation from close neighbours, cohesion with the group heading and the
// world boundary policy. Every function here only reads the index.
package force

import (
	"fmt"
	"iter"
	"math"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/agent"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

// SeparationEpsilon is the squared magnitude under which a separation vector
// is treated as zero.
const SeparationEpsilon = 1e-7

// Index is the read-only view of the spatial index used during the force
// phase. Region may yield candidates outside the window; they are filtered.
type Index interface {
	Region(window geometry.Rectangle) iter.Seq[agent.Snapshot]
}

// Boundary selects what happens at the edge of the world.
type Boundary string

const (
	BoundaryBounce Boundary = "bounce"
	BoundaryWrap   Boundary = "wrap"
)

// ParseBoundary accepts "bounce" and "wrap".
func ParseBoundary(s string) (Boundary, error) {
	switch b := Boundary(s); b {
	case BoundaryBounce, BoundaryWrap:
		return b, nil
	default:
		return "", fmt.Errorf("unknown boundary policy %q", s)
	}
}

// Params are the flocking constants.
type Params struct {
	// DetectionScale magnifies the agent rectangle into the separation window.
	DetectionScale float64
	// GroupScale magnifies the agent rectangle into the cohesion window.
	GroupScale float64

	SeparationGain  float64
	SeparationDecay float64
	// AverageSeparation divides the separation sum by the neighbour count.
	AverageSeparation bool

	// CohesionGain in [0,1] is how far the heading turns toward the group
	// heading in one tick.
	CohesionGain float64

	Boundary Boundary
	Margin   float64
	World    geometry.Rectangle
}

// Inner is the world shrunk by the boundary margin.
func (p Params) Inner() geometry.Rectangle {
	return p.World.Shrink(p.Margin)
}

// neighbours yields the snapshots overlapping window, self excluded.
func neighbours(idx Index, self agent.Snapshot, window geometry.Rectangle) iter.Seq[agent.Snapshot] {
	return func(yield func(agent.Snapshot) bool) {
		for other := range idx.Region(window) {
			if other.Equal(self) || !window.Overlaps(other.Rect) {
				continue
			}
			if !yield(other) {
				return
			}
		}
	}
}

// Separation returns the repulsion felt by self. Each neighbour in the
// detection window pushes along the direction away from its midpoint with a
// weight of 1/(1 + decay*distance).
func Separation(idx Index, self agent.Snapshot, p Params) geometry.Vector2D {
	window := self.Rect.Magnify(geometry.Splat(p.DetectionScale))
	me := self.Midpoint()

	var sum geometry.Vector2D
	n := 0
	for other := range neighbours(idx, self, window) {
		away := me.Sub(other.Midpoint())
		weight := 1 / (1 + p.SeparationDecay*away.Len())
		sum = sum.Add(away.Normalize().Mul(weight))
		n++
	}
	if n > 0 && p.AverageSeparation {
		sum = sum.Mul(1 / float64(n))
	}
	if sum.LenSqr() < SeparationEpsilon {
		return geometry.Vector2D{}
	}
	return sum
}

// GroupVelocity averages the velocities of the neighbours in the group
// window. n is the number of neighbours found.
func GroupVelocity(idx Index, self agent.Snapshot, p Params) (avg geometry.Vector2D, n int) {
	window := self.Rect.Magnify(geometry.Splat(p.GroupScale))
	for other := range neighbours(idx, self, window) {
		avg = avg.Add(other.Velocity)
		n++
	}
	if n == 0 {
		return geometry.Vector2D{}, 0
	}
	return avg.Mul(1 / float64(n)), n
}

// Steer turns velocity toward the group heading and away from neighbours
// while keeping its length. An agent at rest stays at rest.
func Steer(velocity, separation, group geometry.Vector2D, p Params) geometry.Vector2D {
	speed := velocity.Len()
	if speed < geometry.Epsilon {
		return geometry.Vector2D{}
	}
	heading := velocity.Mul(1 / speed)

	if target := group.Normalize(); target.LenSqr() > 0 {
		heading = heading.Lerp(target, p.CohesionGain)
	}
	direction := heading.Add(separation.Mul(p.SeparationGain))
	if direction.LenSqr() < SeparationEpsilon {
		return velocity
	}
	return direction.WithLen(speed)
}

// Bounce inverts each velocity component that would carry the position past
// the edge of inner within dt.
func Bounce(position, velocity geometry.Vector2D, dt float64, inner geometry.Rectangle) geometry.Vector2D {
	next := position.Add(velocity.Mul(dt))
	if (next.X <= inner.Min.X && velocity.X < 0) || (next.X >= inner.Max.X && velocity.X > 0) {
		velocity.X = -velocity.X
	}
	if (next.Y <= inner.Min.Y && velocity.Y < 0) || (next.Y >= inner.Max.Y && velocity.Y > 0) {
		velocity.Y = -velocity.Y
	}
	return velocity
}

// Wrap maps a position that left inner back onto it, as on a torus.
// Positions inside inner are returned unchanged.
func Wrap(position geometry.Vector2D, inner geometry.Rectangle) geometry.Vector2D {
	return geometry.Vector2D{
		X: wrapAxis(position.X, inner.Min.X, inner.Max.X),
		Y: wrapAxis(position.Y, inner.Min.Y, inner.Max.Y),
	}
}

func wrapAxis(x, lo, hi float64) float64 {
	if x >= lo && x <= hi {
		return x
	}
	width := hi - lo
	if width <= 0 {
		return lo
	}
	m := math.Mod(x-lo, width)
	if m < 0 {
		m += width
	}
	return lo + m
}

// Model applies Params to agents.
type Model struct {
	params Params
}

func NewModel(p Params) *Model {
	return &Model{params: p}
}

func (m *Model) Params() Params {
	return m.params
}

// Velocity returns the velocity of a for the coming integration step.
func (m *Model) Velocity(idx Index, a agent.Agent, dt float64) geometry.Vector2D {
	self := agent.NewSnapshot(a)
	separation := Separation(idx, self, m.params)
	group, _ := GroupVelocity(idx, self, m.params)

	v := Steer(a.Velocity, separation, group, m.params)
	if m.params.Boundary == BoundaryBounce {
		v = Bounce(a.Position, v, dt, m.params.Inner())
	}
	return v
}

// Constrain applies the position side of the boundary policy after
// integration.
func (m *Model) Constrain(position geometry.Vector2D) geometry.Vector2D {
	if m.params.Boundary == BoundaryWrap {
		return Wrap(position, m.params.Inner())
	}
	return position
}
