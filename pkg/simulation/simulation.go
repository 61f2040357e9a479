// Package simulation runs the boids tick pipeline: forces are computed in
// parallel against a read-only quadtree, agents are integrated in parallel,
// then the index is rebuilt and compacted on a single goroutine.
package simulation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/agent"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/force"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/integrator"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/quadtree"
)

const (
	ErrTypeFault  = "simulation_fault"
	ErrTypeHalted = "simulation_halted"
)

// Phase is the state of the tick state machine. A tick always walks
// ComputingForces, Integrating, Reindexing, CleaningUp and returns to Idle.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseComputingForces
	PhaseIntegrating
	PhaseReindexing
	PhaseCleaningUp
	PhaseHalted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseComputingForces:
		return "computing_forces"
	case PhaseIntegrating:
		return "integrating"
	case PhaseReindexing:
		return "reindexing"
	case PhaseCleaningUp:
		return "cleaning_up"
	case PhaseHalted:
		return "halted"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Index is the quadtree specialised for agent snapshots.
type Index = quadtree.Quadtree[agent.ID, agent.Snapshot]

// Report summarises one tick.
type Report struct {
	Tick       uint64         `json:"tick"`
	Agents     int            `json:"agents"`
	Updated    int            `json:"updated"`    // re-indexed in place
	Reinserted int            `json:"reinserted"` // deleted then inserted
	Rejected   int            `json:"rejected"`   // left the world
	Pruned     int            `json:"pruned"`     // indexed but no longer supplied
	Collapsed  int            `json:"collapsed"`
	Index      quadtree.Stats `json:"index"`

	Forces    time.Duration `json:"forces"`
	Integrate time.Duration `json:"integrate"`
	Reindex   time.Duration `json:"reindex"`
	Cleanup   time.Duration `json:"cleanup"`
	Duration  time.Duration `json:"duration"`
}

type Option func(*Simulation)

// WithLogger sets the logger, log.DiscardLogger by default.
func WithLogger(l log.Logger) Option {
	return func(s *Simulation) {
		s.logger = l
	}
}

// WithPhaseObserver registers fn to be called on every phase transition,
// from the goroutine running Step. A panic in fn is a fault.
func WithPhaseObserver(fn func(Phase)) Option {
	return func(s *Simulation) {
		s.observer = fn
	}
}

// Simulation owns the spatial index and advances caller-owned agents.
type Simulation struct {
	mu sync.Mutex

	cfg        *Config
	index      *Index
	model      *force.Model
	integrator integrator.Integrator
	workers    int

	logger   log.Logger
	observer func(Phase)

	phase      atomic.Int32
	tick       uint64
	fault      error
	velocities []geometry.Vector2D
}

// New builds a simulation with an empty index covering the world bounds.
func New(cfg *Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	in, err := integrator.New(integrator.Kind(cfg.Integrator))
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg: cfg,
		index: quadtree.New[agent.ID, agent.Snapshot](cfg.WorldBounds(),
			quadtree.WithThreshold(cfg.Threshold),
			quadtree.WithMaxDepth(cfg.MaxDepth)),
		model:      force.NewModel(cfg.ForceParams()),
		integrator: in,
		workers:    cfg.Workers,
		logger:     log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulation) Config() *Config {
	return s.cfg
}

// Phase returns the current phase. Safe to call while a tick runs.
func (s *Simulation) Phase() Phase {
	return Phase(s.phase.Load())
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Err returns the fault that halted the simulation, if any.
func (s *Simulation) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}

// Stats returns the shape of the index.
func (s *Simulation) Stats() quadtree.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Stats()
}

// Neighbours returns the agents whose rectangles overlap window, as seen at
// the end of the last tick.
func (s *Simulation) Neighbours(window geometry.Rectangle) []agent.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []agent.Snapshot
	for v := range s.index.Region(window) {
		if window.Overlaps(v.Rect) {
			out = append(out, v)
		}
	}
	return out
}

// Load replaces the content of the index with agents and returns how many
// were rejected for lying outside the world.
func (s *Simulation) Load(agents []agent.Agent) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index.Clear()
	rejected := 0
	for _, a := range agents {
		if !s.index.Insert(agent.NewSnapshot(a)) {
			rejected++
		}
	}
	return rejected
}

// Step runs one tick over agents, updating their position and velocity in
// place. A dt <= 0 selects the configured time step. Ticks never overlap.
//
// The context is only checked before the tick starts. A panic during the tick
// halts the simulation: the fault is returned, and every later call returns
// an error of type ErrTypeHalted.
func (s *Simulation) Step(ctx context.Context, agents []agent.Agent, dt float64) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fault != nil {
		return Report{}, errors.New("simulation is halted").
			WithType(ErrTypeHalted).
			WithTag("tick", s.tick).
			Wrap(s.fault)
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if dt <= 0 {
		dt = s.cfg.TimeStep
	}

	start := time.Now()
	report := Report{Tick: s.tick + 1, Agents: len(agents)}
	if err := s.run(agents, dt, &report); err != nil {
		s.halt(err)
		return report, err
	}

	s.tick++
	report.Index = s.index.Stats()
	report.Duration = time.Since(start)
	s.setPhase(PhaseIdle)

	instrumentTick(report)
	s.logger.Debugf("tick %d: %d agents, %d updated, %d reinserted, %d rejected, %d collapsed | index %d nodes, depth %d | %s",
		report.Tick, report.Agents, report.Updated, report.Reinserted, report.Rejected, report.Collapsed,
		report.Index.Nodes, report.Index.MaxDepth, report.Duration)
	return report, nil
}

func (s *Simulation) run(agents []agent.Agent, dt float64, report *Report) error {
	n := len(agents)
	if cap(s.velocities) < n {
		s.velocities = make([]geometry.Vector2D, n)
	}
	velocities := s.velocities[:n]

	// 1. Forces, index is read-only
	err := s.phaseRun(PhaseComputingForces, &report.Forces, func() error {
		return s.parallel(n, func(i int) {
			velocities[i] = s.model.Velocity(s.index, agents[i], dt)
		})
	})
	if err != nil {
		return err
	}

	// 2. Integration, each worker owns its agents
	err = s.phaseRun(PhaseIntegrating, &report.Integrate, func() error {
		return s.parallel(n, func(i int) {
			a := &agents[i]
			position, velocity := s.integrator.Step(a.Position, velocities[i], a.Acceleration, dt)
			a.Position = s.model.Constrain(position)
			a.Velocity = velocity
		})
	})
	if err != nil {
		return err
	}

	// 3. Re-index, single goroutine
	err = s.phaseRun(PhaseReindexing, &report.Reindex, func() error {
		s.reindex(agents, report)
		return nil
	})
	if err != nil {
		return err
	}

	// 4. Collapse empty subtrees
	return s.phaseRun(PhaseCleaningUp, &report.Cleanup, func() error {
		report.Collapsed = s.index.CleanStructure()
		return nil
	})
}

func (s *Simulation) reindex(agents []agent.Agent, report *Report) {
	for _, a := range agents {
		snapshot := agent.NewSnapshot(a)
		if s.cfg.SkipUnchangedReindex && s.index.Update(snapshot) {
			report.Updated++
			continue
		}
		s.index.Delete(snapshot.ID)
		if s.index.Insert(snapshot) {
			report.Reinserted++
		} else {
			report.Rejected++
		}
	}

	if s.index.Len() == report.Updated+report.Reinserted {
		return
	}
	// Some indexed agents were not supplied this tick.
	live := make(map[agent.ID]struct{}, len(agents))
	for _, a := range agents {
		live[a.ID] = struct{}{}
	}
	var stale []agent.ID
	for v := range s.index.All() {
		if _, ok := live[v.ID]; !ok {
			stale = append(stale, v.ID)
		}
	}
	for _, id := range stale {
		s.index.Delete(id)
	}
	report.Pruned = len(stale)
}

func (s *Simulation) phaseRun(p Phase, elapsed *time.Duration, fn func() error) error {
	start := time.Now()
	err := safely(func() error {
		s.setPhase(p)
		return fn()
	})
	*elapsed = time.Since(start)
	instrumentPhase(p, *elapsed)
	return err
}

// parallel calls fn for every index in [0, n) from at most s.workers
// goroutines, in contiguous batches.
func (s *Simulation) parallel(n int, fn func(i int)) error {
	if n == 0 {
		return nil
	}
	var g errgroup.Group
	g.SetLimit(s.workers)

	chunkSize := max(1, n/(s.workers*2))
	for lo := 0; lo < n; lo += chunkSize {
		hi := min(lo+chunkSize, n)
		g.Go(func() error {
			return safely(func() error {
				for i := lo; i < hi; i++ {
					fn(i)
				}
				return nil
			})
		})
	}
	return g.Wait()
}

func (s *Simulation) setPhase(p Phase) {
	s.phase.Store(int32(p))
	if s.observer != nil {
		s.observer(p)
	}
}

func (s *Simulation) halt(err error) {
	s.fault = err
	s.phase.Store(int32(PhaseHalted))
	instrumentFault(err)
	s.logger.Errorf("simulation halted at tick %d: %v", s.tick+1, err)
}

// safely turns a panic raised by fn into a fault.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = errors.New("internal fault").
				WithType(ErrTypeFault).
				Wrap(cause)
		}
	}()
	return fn()
}
