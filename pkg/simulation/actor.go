package simulation

import (
	"math"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/agent"
)

// Actor owns the agent population and drives the simulation one tick per
// message. The mailbox serialises ticks.
//
// Messages:
//   - *durationpb.Duration: run one tick with that time step (zero selects
//     the configured one). The reply is the tick report encoded by
//     EncodeReport.
type Actor struct {
	sim        *Simulation
	agents     []agent.Agent
	snapshotCh chan<- []agent.Agent

	// --- Benchmark Stats ---
	ticks       int
	lastLogTime time.Time
}

var _ actor.Actor = (*Actor)(nil)

// NewActor creates the actor. snapshotCh may be nil; when set, a copy of the
// agents is offered after every successful tick, before the reply, and
// dropped if the reader is busy.
func NewActor(sim *Simulation, agents []agent.Agent, snapshotCh chan<- []agent.Agent) *Actor {
	return &Actor{
		sim:         sim,
		agents:      agents,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (a *Actor) PreStart(ctx *actor.Context) error {
	rejected := a.sim.Load(a.agents)
	ctx.ActorSystem().Logger().Infof("Boids loaded: %d agents, %d outside the world", len(a.agents), rejected)
	return nil
}

func (a *Actor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		stats := a.sim.Stats()
		ctx.Logger().Infof("Simulation started: index %d nodes, depth %d", stats.Nodes, stats.MaxDepth)

	case *durationpb.Duration:
		a.handleTick(ctx, msg.AsDuration())

	default:
		ctx.Unhandled()
	}
}

func (a *Actor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("Simulation stopped after %d ticks", a.sim.Tick())
	return nil
}

func (a *Actor) handleTick(ctx *actor.ReceiveContext, dt time.Duration) {
	report, err := a.sim.Step(ctx.Context(), a.agents, dt.Seconds())
	if err != nil {
		ctx.Logger().Errorf("tick %d failed: %v", report.Tick, err)
	}

	if err == nil {
		a.ticks++
		a.pushSnapshot()
		a.logBenchmarks(ctx, report)
	}

	resp, encErr := EncodeReport(report, err)
	if encErr != nil {
		ctx.Err(encErr)
		return
	}
	ctx.Response(resp)
}

func (a *Actor) pushSnapshot() {
	if a.snapshotCh == nil {
		return
	}
	snapshot := make([]agent.Agent, len(a.agents))
	copy(snapshot, a.agents)
	select {
	case a.snapshotCh <- snapshot:
	default:
		// reader busy, skip frame
	}
}

func (a *Actor) logBenchmarks(ctx *actor.ReceiveContext, last Report) {
	if time.Since(a.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 TICK RATE: %d/sec | Agents: %d | Index: %d nodes, %d leaves, depth %d | last tick %s",
			a.ticks, last.Agents, last.Index.Nodes, last.Index.Leaves, last.Index.MaxDepth, last.Duration)
		a.ticks = 0
		a.lastLogTime = time.Now()
	}
}

// EncodeReport packs a tick report, and the error of the tick if any, into a
// protobuf struct.
func EncodeReport(r Report, tickErr error) (*structpb.Struct, error) {
	fields := map[string]any{
		"tick":       float64(r.Tick),
		"agents":     r.Agents,
		"updated":    r.Updated,
		"reinserted": r.Reinserted,
		"rejected":   r.Rejected,
		"pruned":     r.Pruned,
		"collapsed":  r.Collapsed,
		"index": map[string]any{
			"nodes":     r.Index.Nodes,
			"leaves":    r.Index.Leaves,
			"values":    r.Index.Values,
			"max_depth": r.Index.MaxDepth,
		},
		"phases_seconds": map[string]any{
			"forces":    r.Forces.Seconds(),
			"integrate": r.Integrate.Seconds(),
			"reindex":   r.Reindex.Seconds(),
			"cleanup":   r.Cleanup.Seconds(),
		},
		"duration_seconds": r.Duration.Seconds(),
	}
	if tickErr != nil {
		fields["error"] = tickErr.Error()
		fields["error_type"] = errors.Type(tickErr)
	}
	return structpb.NewStruct(fields)
}

// DecodeReport is the inverse of EncodeReport. A report carrying a tick
// error is returned along with that error.
func DecodeReport(s *structpb.Struct) (Report, error) {
	m := s.AsMap()
	num := func(m map[string]any, key string) int {
		v, _ := m[key].(float64)
		return int(v)
	}

	r := Report{
		Tick:       uint64(num(m, "tick")),
		Agents:     num(m, "agents"),
		Updated:    num(m, "updated"),
		Reinserted: num(m, "reinserted"),
		Rejected:   num(m, "rejected"),
		Pruned:     num(m, "pruned"),
		Collapsed:  num(m, "collapsed"),
	}
	if index, ok := m["index"].(map[string]any); ok {
		r.Index.Nodes = num(index, "nodes")
		r.Index.Leaves = num(index, "leaves")
		r.Index.Values = num(index, "values")
		r.Index.MaxDepth = num(index, "max_depth")
	}
	if phases, ok := m["phases_seconds"].(map[string]any); ok {
		r.Forces = seconds(phases, "forces")
		r.Integrate = seconds(phases, "integrate")
		r.Reindex = seconds(phases, "reindex")
		r.Cleanup = seconds(phases, "cleanup")
	}
	r.Duration = seconds(m, "duration_seconds")

	if msg, ok := m["error"].(string); ok {
		errType, _ := m["error_type"].(string)
		return r, errors.New(msg).WithType(errType)
	}
	return r, nil
}

func seconds(m map[string]any, key string) time.Duration {
	d, _ := m[key].(float64)
	return time.Duration(math.Round(d * float64(time.Second)))
}
