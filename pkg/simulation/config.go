package simulation

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/segmentio/encoding/json"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/force"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/integrator"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/quadtree"
)

//go:embed boids.schema.json
var schemaJSON []byte

const embeddedSchemaURL = "boids.schema.json"

// SpawnConfig describes the initial grid of boids built by SpawnGrid.
type SpawnConfig struct {
	Columns  int               `json:"columns" toml:"columns"`
	Rows     int               `json:"rows" toml:"rows"`
	Spacing  geometry.Vector2D `json:"spacing" toml:"spacing"`
	Size     geometry.Vector2D `json:"size" toml:"size"`
	Velocity geometry.Vector2D `json:"velocity" toml:"velocity"`
}

type Config struct {
	// World dimensions, centered on the origin. Bounds wins when set.
	WorldWidth  float64             `json:"worldWidth" toml:"worldWidth"`
	WorldHeight float64             `json:"worldHeight" toml:"worldHeight"`
	Bounds      *geometry.Rectangle `json:"bounds,omitempty" toml:"bounds"`

	// Spatial index
	Threshold int `json:"threshold" toml:"threshold"`
	MaxDepth  int `json:"maxDepth" toml:"maxDepth"`

	// Flocking
	DetectionScale    float64 `json:"detectionScale" toml:"detectionScale"`
	GroupScale        float64 `json:"groupScale" toml:"groupScale"`
	SeparationGain    float64 `json:"separationGain" toml:"separationGain"`
	SeparationDecay   float64 `json:"separationDecay" toml:"separationDecay"`
	AverageSeparation bool    `json:"averageSeparation" toml:"averageSeparation"`
	CohesionGain      float64 `json:"cohesionGain" toml:"cohesionGain"`

	// Boundary policy: "bounce" or "wrap"
	Boundary string  `json:"boundary" toml:"boundary"`
	Margin   float64 `json:"margin" toml:"margin"`

	// Integration: "euler" or "rk4"
	Integrator string  `json:"integrator" toml:"integrator"`
	TimeStep   float64 `json:"timeStep" toml:"timeStep"` // seconds

	Workers              int  `json:"workers" toml:"workers"`
	SkipUnchangedReindex bool `json:"skipUnchangedReindex" toml:"skipUnchangedReindex"`

	Spawn SpawnConfig `json:"spawn" toml:"spawn"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:        1920,
		WorldHeight:       1080,
		Threshold:         quadtree.DefaultThreshold,
		MaxDepth:          quadtree.DefaultMaxDepth,
		DetectionScale:    4,
		GroupScale:        10,
		SeparationGain:    1,
		SeparationDecay:   1,
		AverageSeparation: true,
		CohesionGain:      0.05,
		Boundary:          string(force.BoundaryBounce),
		Margin:            20,
		Integrator:        string(integrator.KindEuler),
		TimeStep:          1.0 / 60,
		Workers:           4,
		Spawn: SpawnConfig{
			Columns:  50,
			Rows:     50,
			Spacing:  geometry.NewVector(15, 10),
			Size:     geometry.Splat(3.5),
			Velocity: geometry.NewVector(-8, 0),
		},
	}
}

// WorldBounds returns Bounds, or the WorldWidth x WorldHeight rectangle
// centered on the origin.
func (c *Config) WorldBounds() geometry.Rectangle {
	if c.Bounds != nil {
		return *c.Bounds
	}
	return BoundsFromSize(c.WorldWidth, c.WorldHeight)
}

// ForceParams maps the flocking settings onto force.Params.
func (c *Config) ForceParams() force.Params {
	return force.Params{
		DetectionScale:    c.DetectionScale,
		GroupScale:        c.GroupScale,
		SeparationGain:    c.SeparationGain,
		SeparationDecay:   c.SeparationDecay,
		AverageSeparation: c.AverageSeparation,
		CohesionGain:      c.CohesionGain,
		Boundary:          force.Boundary(c.Boundary),
		Margin:            c.Margin,
		World:             c.WorldBounds(),
	}
}

// Validate checks what the schema cannot express.
func (c *Config) Validate() error {
	b := c.WorldBounds()
	if !(b.Min.X < b.Max.X && b.Min.Y < b.Max.Y) {
		return fmt.Errorf("world bounds %s have no area", b)
	}
	if inner := b.Shrink(c.Margin); inner.Area() <= 0 {
		return fmt.Errorf("margin %.2f leaves no room inside %s", c.Margin, b)
	}
	if _, err := force.ParseBoundary(c.Boundary); err != nil {
		return err
	}
	if _, err := integrator.New(integrator.Kind(c.Integrator)); err != nil {
		return err
	}
	if c.Threshold < 1 {
		return fmt.Errorf("threshold must be at least 1, got %d", c.Threshold)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("maxDepth must not be negative, got %d", c.MaxDepth)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.TimeStep <= 0 {
		return fmt.Errorf("timeStep must be positive, got %v", c.TimeStep)
	}
	return nil
}

// LoadConfig overlays a JSON or TOML file on DefaultConfig. The file is
// validated against the JSON schema before decoding; an empty schemaFile
// selects the embedded schema.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	isTOML := strings.EqualFold(filepath.Ext(configFile), ".toml")

	// 3. Validate
	doc, err := decodeDocument(b, isTOML)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Decode on top of the defaults
	cfg := DefaultConfig()
	if isTOML {
		_, err = toml.Decode(string(b), cfg)
	} else {
		err = json.Unmarshal(b, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	if schemaFile != "" {
		return jsonschema.Compile(schemaFile)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(embeddedSchemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(embeddedSchemaURL)
}

// decodeDocument returns the generic form of a config file. TOML documents
// are passed through JSON so both formats reach the schema with the same
// value types.
func decodeDocument(b []byte, isTOML bool) (any, error) {
	if isTOML {
		m := make(map[string]any)
		if _, err := toml.Decode(string(b), &m); err != nil {
			return nil, err
		}
		var err error
		if b, err = json.Marshal(m); err != nil {
			return nil, err
		}
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}
