// Package agent holds the per-agent state handed to the simulation core and
// the snapshot value stored in the spatial index.
package agent

import (
	"github.com/google/uuid"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

// ID is the stable identity of an agent. It is assigned by the caller and
// never changes for the life of the agent.
type ID string

// NewID returns a random identity.
func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}

// Agent is the authoritative state of one boid. Position is the center of
// its bounding box of the given Size.
type Agent struct {
	ID           ID                `json:"id" toml:"id"`
	Position     geometry.Vector2D `json:"position" toml:"position"`
	Velocity     geometry.Vector2D `json:"velocity" toml:"velocity"`
	Acceleration geometry.Vector2D `json:"acceleration,omitempty" toml:"acceleration"`
	Size         geometry.Vector2D `json:"size" toml:"size"`
}

// New creates an agent with a random ID.
func New(position, velocity, size geometry.Vector2D) Agent {
	return Agent{
		ID:       NewID(),
		Position: position,
		Velocity: velocity,
		Size:     size,
	}
}

// Rect is the bounding box of the agent.
func (a Agent) Rect() geometry.Rectangle {
	return geometry.RectangleFromCenter(a.Position, a.Size)
}

// Speed is the length of the velocity.
func (a Agent) Speed() float64 {
	return a.Velocity.Len()
}

// Snapshot is the per-tick view of an agent stored in the spatial index.
// Two snapshots denote the same agent iff their IDs match: the rectangle and
// velocity drift every tick while the identity stays.
type Snapshot struct {
	ID       ID
	Rect     geometry.Rectangle
	Velocity geometry.Vector2D
}

// NewSnapshot captures the current state of a.
func NewSnapshot(a Agent) Snapshot {
	return Snapshot{
		ID:       a.ID,
		Rect:     a.Rect(),
		Velocity: a.Velocity,
	}
}

func (s Snapshot) Key() ID {
	return s.ID
}

func (s Snapshot) Bounds() geometry.Rectangle {
	return s.Rect
}

// Midpoint is the center of the snapshot rectangle.
func (s Snapshot) Midpoint() geometry.Vector2D {
	return s.Rect.Center()
}

// Equal compares identities only.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.ID == other.ID
}
