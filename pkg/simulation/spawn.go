package simulation

import (
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/agent"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

// BoundsFromSize returns the width x height rectangle centered on the origin.
func BoundsFromSize(width, height float64) geometry.Rectangle {
	half := geometry.NewVector(width/2, height/2)
	return geometry.NewRectangle(half.Neg(), half)
}

// SpawnGrid lays Columns x Rows boids on a regular grid centered on the
// origin, all moving with the same initial velocity.
func SpawnGrid(c SpawnConfig) []agent.Agent {
	if c.Columns <= 0 || c.Rows <= 0 {
		return nil
	}
	origin := geometry.NewVector(
		-float64(c.Columns-1)/2*c.Spacing.X,
		-float64(c.Rows-1)/2*c.Spacing.Y,
	)

	agents := make([]agent.Agent, 0, c.Columns*c.Rows)
	for col := range c.Columns {
		for row := range c.Rows {
			position := origin.Add(geometry.NewVector(float64(col)*c.Spacing.X, float64(row)*c.Spacing.Y))
			agents = append(agents, agent.New(position, c.Velocity, c.Size))
		}
	}
	return agents
}
