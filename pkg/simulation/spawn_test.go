package simulation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/agent"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

func TestBoundsFromSize(t *testing.T) {
	got := BoundsFromSize(1920, 1080)
	require.True(t, got.Eq(geometry.NewRectangle(geometry.NewVector(-960, -540), geometry.NewVector(960, 540))))
}

func TestSpawnGrid(t *testing.T) {
	cfg := SpawnConfig{
		Columns:  3,
		Rows:     2,
		Spacing:  geometry.NewVector(10, 4),
		Size:     geometry.Splat(2),
		Velocity: geometry.NewVector(-8, 0),
	}
	agents := SpawnGrid(cfg)
	require.Len(t, agents, 6)

	ids := make(map[agent.ID]struct{})
	var sum geometry.Vector2D
	for _, a := range agents {
		ids[a.ID] = struct{}{}
		sum = sum.Add(a.Position)
		require.Equal(t, cfg.Velocity, a.Velocity)
		require.Equal(t, cfg.Size, a.Size)
	}
	require.Len(t, ids, 6, "ids must be unique")
	require.True(t, sum.Eq(geometry.Vector2D{}), "grid is centered, got sum %v", sum)

	require.True(t, agents[0].Position.Eq(geometry.NewVector(-10, -2)))
	require.True(t, agents[5].Position.Eq(geometry.NewVector(10, 2)))
}

func TestSpawnGrid_Empty(t *testing.T) {
	require.Empty(t, SpawnGrid(SpawnConfig{Columns: 0, Rows: 5}))
}

func TestSpawnGrid_DefaultFitsTheWorld(t *testing.T) {
	cfg := DefaultConfig()
	world := cfg.WorldBounds()
	agents := SpawnGrid(cfg.Spawn)
	require.Len(t, agents, cfg.Spawn.Columns*cfg.Spawn.Rows)
	for _, a := range agents {
		require.True(t, world.Contains(a.Rect()), "%s outside the world", a.Position)
	}
}
