package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/force"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/geometry"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.True(t, cfg.WorldBounds().Eq(BoundsFromSize(1920, 1080)))
}

func TestLoadConfig_EmptyDocumentKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "boids.json", `{}`), "")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig(writeFile(t, "boids.toml", ``), "")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_JSONAndTOMLAgree(t *testing.T) {
	jsonCfg, err := LoadConfig(writeFile(t, "boids.json", `{
		"bounds": {"min": {"x": -100, "y": -100}, "max": {"x": 100, "y": 100}},
		"threshold": 4,
		"maxDepth": 3,
		"boundary": "wrap",
		"margin": 0,
		"integrator": "rk4",
		"workers": 2,
		"skipUnchangedReindex": true,
		"spawn": {"columns": 2, "rows": 3, "spacing": {"x": 5, "y": 5}, "size": {"x": 1, "y": 1}, "velocity": {"x": 1, "y": 0}}
	}`), "")
	require.NoError(t, err)

	tomlCfg, err := LoadConfig(writeFile(t, "boids.toml", `
threshold = 4
maxDepth = 3
boundary = "wrap"
margin = 0.0
integrator = "rk4"
workers = 2
skipUnchangedReindex = true

[bounds]
min = { x = -100.0, y = -100.0 }
max = { x = 100.0, y = 100.0 }

[spawn]
columns = 2
rows = 3
spacing = { x = 5.0, y = 5.0 }
size = { x = 1.0, y = 1.0 }
velocity = { x = 1.0, y = 0.0 }
`), "")
	require.NoError(t, err)

	require.Equal(t, jsonCfg, tomlCfg)
	require.Equal(t, 4, jsonCfg.Threshold)
	require.Equal(t, "rk4", jsonCfg.Integrator)
	require.True(t, jsonCfg.WorldBounds().Eq(geometry.NewRectangle(geometry.NewVector(-100, -100), geometry.NewVector(100, 100))))
	require.Equal(t, force.BoundaryWrap, jsonCfg.ForceParams().Boundary)
	require.Equal(t, 6, len(SpawnGrid(jsonCfg.Spawn)))
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"Zero threshold", "boids.json", `{"threshold": 0}`},
		{"Unknown boundary", "boids.json", `{"boundary": "teleport"}`},
		{"Unknown integrator", "boids.toml", `integrator = "verlet"`},
		{"Unknown field", "boids.json", `{"numRedAtStart": 3}`},
		{"Cohesion gain above one", "boids.toml", `cohesionGain = 1.5`},
		{"Inverted bounds", "boids.json", `{"bounds": {"min": {"x": 10, "y": 10}, "max": {"x": -10, "y": -10}}}`},
		{"Margin eats the world", "boids.json", `{"worldWidth": 100, "worldHeight": 100, "margin": 60}`},
		{"Not JSON", "boids.json", `threshold = 4`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, tt.file, tt.content), "")
			require.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFiles(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), "")
	require.Error(t, err)

	_, err = LoadConfig(writeFile(t, "boids.json", `{}`), filepath.Join(t.TempDir(), "missing.schema.json"))
	require.Error(t, err)
}

func TestLoadConfig_ExternalSchema(t *testing.T) {
	schema := writeFile(t, "boids.schema.json", string(schemaJSON))
	cfg, err := LoadConfig(writeFile(t, "boids.json", `{"workers": 8}`), schema)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Workers)
}

func TestLoadConfig_SampleFiles(t *testing.T) {
	for _, name := range []string{"boids.json", "boids.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadConfig(filepath.Join("..", "..", "configs", name), "")
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())
		})
	}
}
