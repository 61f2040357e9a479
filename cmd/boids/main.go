package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/agent"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/simulation"
)

// The version number. Set at build.
var version = "v0.1.0"

// Keeps the field names of config readable for the cli package when the
// binary is obfuscated.
var _ = reflect.TypeOf(config{})

type config struct {
	Config      string        `cli:""        env:"BOIDS_CONFIG"       help:"Simulation config file (.json or .toml). Defaults are used when empty."`
	Schema      string        `cli:",hidden" env:"BOIDS_SCHEMA"       help:"JSON schema for the config file. The embedded schema is used when empty."`
	Ticks       int           `cli:""        env:"BOIDS_TICKS"        help:"Number of ticks to run, 0 runs until interrupted."`
	Interval    time.Duration `cli:""        env:"BOIDS_INTERVAL"     help:"Wall-clock time between two ticks, 0 runs as fast as possible."`
	AskTimeout  time.Duration `cli:",hidden" env:"BOIDS_ASK_TIMEOUT"  help:"Maximum time to wait for a tick reply."`
	Snapshot    string        `cli:""        env:"BOIDS_SNAPSHOT"     help:"File where the final agent states are written as JSON."`
	MetricsAddr string        `cli:""        env:"BOIDS_METRICS_ADDR" help:"Listening address for Prometheus metrics, disabled when empty."`
	LogLevel    string        `cli:""        env:"BOIDS_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	Version     bool          `cli:""        env:"-"                  help:"Show version."`
	Help        bool          `cli:""        env:"-"                  help:"Show help."`
}

func main() {
	conf := config{
		Ticks:      600,
		AskTimeout: 10 * time.Second,
		LogLevel:   "info",
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Runs a headless boids simulation over an adaptive quadtree.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logger := golog.New(parseLevel(conf.LogLevel), os.Stdout)
	if err := run(ctx, conf, logger); err != nil {
		logger.Errorf("boids: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, conf config, logger golog.Logger) error {
	if conf.Ticks < 0 {
		return errors.New("ticks must not be negative").WithTag("ticks", conf.Ticks)
	}

	cfg := simulation.DefaultConfig()
	if conf.Config != "" {
		loaded, err := simulation.LoadConfig(conf.Config, conf.Schema)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	sim, err := simulation.New(cfg, simulation.WithLogger(logger))
	if err != nil {
		return err
	}
	agents := simulation.SpawnGrid(cfg.Spawn)

	if conf.MetricsAddr != "" {
		srv := &http.Server{Addr: conf.MetricsAddr, Handler: promhttp.Handler()}
		go func() {
			logger.Infof("serving metrics on %s", conf.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorf("metrics server: %v", err)
			}
		}()
		defer srv.Close()
	}

	system, err := actor.NewActorSystem("BoidsWorld", actor.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("starting actor system: %w", err)
	}
	defer func() {
		_ = system.Stop(context.Background())
	}()

	snapshots := make(chan []agent.Agent, 1)
	pid, err := system.Spawn(ctx, "simulation", simulation.NewActor(sim, agents, snapshots))
	if err != nil {
		return fmt.Errorf("spawning simulation actor: %w", err)
	}

	logger.Infof("🐦 running %d agents in %s (threshold %d, max depth %d, %s, %s)",
		len(agents), cfg.WorldBounds(), cfg.Threshold, cfg.MaxDepth, cfg.Boundary, cfg.Integrator)

	var last []agent.Agent
	dt := durationpb.New(time.Duration(cfg.TimeStep * float64(time.Second)))
	for i := 0; conf.Ticks == 0 || i < conf.Ticks; i++ {
		if ctx.Err() != nil {
			logger.Infof("interrupted after %d ticks", i)
			break
		}

		resp, err := actor.Ask(ctx, pid, dt, conf.AskTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("tick %d: %w", i+1, err)
		}
		reply, ok := resp.(*structpb.Struct)
		if !ok {
			return fmt.Errorf("tick %d: unexpected reply %T", i+1, resp)
		}
		if _, err := simulation.DecodeReport(reply); err != nil {
			return err
		}

		select {
		case last = <-snapshots:
		default:
		}

		if conf.Interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(conf.Interval):
			}
		}
	}

	stats := sim.Stats()
	logger.Infof("done after %d ticks: index %d nodes, %d leaves, %d values, depth %d",
		sim.Tick(), stats.Nodes, stats.Leaves, stats.Values, stats.MaxDepth)

	if conf.Snapshot != "" && last != nil {
		return writeSnapshot(conf.Snapshot, last)
	}
	return nil
}

func writeSnapshot(path string, agents []agent.Agent) error {
	b, err := json.MarshalIndent(agents, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %q: %w", path, err)
	}
	return nil
}

func parseLevel(s string) golog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return golog.DebugLevel
	case "warning", "warn":
		return golog.WarningLevel
	case "error":
		return golog.ErrorLevel
	default:
		return golog.InfoLevel
	}
}
