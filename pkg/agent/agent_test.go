package agent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

func TestNewID_Unique(t *testing.T) {
	seen := make(map[ID]struct{})
	for range 100 {
		id := NewID()
		require.NotEmpty(t, id.String())
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestAgent_Rect(t *testing.T) {
	a := New(geometry.NewVector(10, -4), geometry.NewVector(3, 4), geometry.NewVector(2, 6))

	require.True(t, a.Rect().Eq(geometry.NewRectangle(geometry.NewVector(9, -7), geometry.NewVector(11, -1))))
	require.InDelta(t, 5, a.Speed(), 1e-12)
}

func TestSnapshot_EqualityByID(t *testing.T) {
	a := New(geometry.NewVector(0, 0), geometry.NewVector(1, 0), geometry.Splat(2))
	before := NewSnapshot(a)

	a.Position = geometry.NewVector(50, 50)
	a.Velocity = geometry.NewVector(0, -3)
	after := NewSnapshot(a)

	require.True(t, before.Equal(after))
	require.Equal(t, before.Key(), after.Key())
	require.NotEqual(t, before.Bounds(), after.Bounds())
	require.True(t, after.Midpoint().Eq(geometry.NewVector(50, 50)))

	other := NewSnapshot(New(geometry.NewVector(0, 0), geometry.NewVector(1, 0), geometry.Splat(2)))
	require.False(t, before.Equal(other))
}
