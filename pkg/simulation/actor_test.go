package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/agent"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/quadtree"
)

func startSystem(t *testing.T) actor.ActorSystem {
	t.Helper()
	ctx := context.Background()
	sys, err := actor.NewActorSystem("boids-test", actor.WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, sys.Start(ctx))
	t.Cleanup(func() { _ = sys.Stop(ctx) })
	return sys
}

func tick(t *testing.T, pid *actor.PID, dt time.Duration) (Report, error) {
	t.Helper()
	resp, err := actor.Ask(context.Background(), pid, durationpb.New(dt), 5*time.Second)
	require.NoError(t, err)
	s, ok := resp.(*structpb.Struct)
	require.True(t, ok, "unexpected reply %T", resp)
	return DecodeReport(s)
}

func TestActor_TickRoundTrip(t *testing.T) {
	sys := startSystem(t)
	sim := newSim(t, testConfig())
	agents := []agent.Agent{boid("a", 0, 0, 10, 0), boid("b", 40, 40, 0, -10)}
	snapshots := make(chan []agent.Agent, 1)

	pid, err := sys.Spawn(context.Background(), "simulation", NewActor(sim, agents, snapshots))
	require.NoError(t, err)

	report, err := tick(t, pid, 100*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, uint64(1), report.Tick)
	require.Equal(t, 2, report.Agents)
	require.Equal(t, 2, report.Reinserted)
	require.Equal(t, 2, report.Index.Values)

	select {
	case snapshot := <-snapshots:
		require.Len(t, snapshot, 2)
		require.True(t, snapshot[0].Position.Eq(geometry.NewVector(1, 0)), "position %v", snapshot[0].Position)
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot pushed")
	}

	// The channel is full now: the next tick must not block on it.
	snapshots <- nil
	report, err = tick(t, pid, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(2), report.Tick)
}

func TestActor_ReportsFaults(t *testing.T) {
	sys := startSystem(t)
	sim := newSim(t, testConfig(), WithPhaseObserver(func(p Phase) {
		if p == PhaseCleaningUp {
			panic("corrupted index")
		}
	}))

	pid, err := sys.Spawn(context.Background(), "simulation", NewActor(sim, []agent.Agent{boid("a", 0, 0, 1, 0)}, nil))
	require.NoError(t, err)

	_, err = tick(t, pid, 100*time.Millisecond)
	require.Error(t, err)
	require.Equal(t, ErrTypeFault, errors.Type(err), "got %v", err)

	_, err = tick(t, pid, 100*time.Millisecond)
	require.Equal(t, ErrTypeHalted, errors.Type(err), "got %v", err)
}

func TestEncodeReport(t *testing.T) {
	in := Report{
		Tick:       7,
		Agents:     10,
		Updated:    3,
		Reinserted: 6,
		Rejected:   1,
		Pruned:     2,
		Collapsed:  4,
		Index:      quadtree.Stats{Nodes: 9, Leaves: 7, Values: 9, MaxDepth: 2},
		Forces:     1500 * time.Microsecond,
		Integrate:  250 * time.Microsecond,
		Reindex:    3 * time.Millisecond,
		Cleanup:    7 * time.Microsecond,
		Duration:   4757 * time.Microsecond,
	}
	s, err := EncodeReport(in, nil)
	require.NoError(t, err)

	out, err := DecodeReport(s)
	require.NoError(t, err)
	require.Equal(t, in, out)

	s, err = EncodeReport(in, errors.New("boom").WithType(ErrTypeFault))
	require.NoError(t, err)
	_, err = DecodeReport(s)
	require.Equal(t, ErrTypeFault, errors.Type(err))
}
