package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/1F47E/geo-index-quadtree/pkg/quadtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, quadtree.DefaultBounds(), cfg.Bounds())
	assert.Equal(t, quadtree.IdealCapacity(1_000_000, 8), cfg.TreeCapacity())
	assert.Equal(t, 50, cfg.Search.MaxResults)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", `
map:
  width: 1000
  height: 500
tree:
  places: 200
  capacity: 7
benchmark:
  depths: [1, 2]
postgis:
  host: db.internal
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, 1000.0, cfg.Bounds().Width)
	assert.Equal(t, 250.0, cfg.Bounds().Y)
	assert.Equal(t, 7, cfg.TreeCapacity())
	assert.Equal(t, []int{1, 2}, cfg.Benchmark.Depths)
	assert.Equal(t, "db.internal", cfg.PostGIS.Host)

	// Untouched keys keep their defaults.
	assert.Equal(t, 8, cfg.Tree.Depth)
	assert.Equal(t, 5432, cfg.PostGIS.Port)
	assert.Equal(t, []int{10_000, 100_000, 1_000_000}, cfg.Benchmark.PlaceCounts)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadFallsBackToExample(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ExamplePath, "search:\n  max_results: 20\n")
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ExamplePath, cfg.Source)
	assert.Equal(t, 20, cfg.Search.MaxResults)
}

func TestLoadWithoutAnyFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Empty(t, cfg.Source)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParseError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.yaml", "tree: [places")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Map.Width = 0 }},
		{"negative height", func(c *Config) { c.Map.Height = -1 }},
		{"negative places", func(c *Config) { c.Tree.Places = -1 }},
		{"negative depth", func(c *Config) { c.Tree.Depth = -1 }},
		{"negative capacity", func(c *Config) { c.Tree.Capacity = -1 }},
		{"no search results", func(c *Config) { c.Search.MaxResults = 0 }},
		{"negative searches", func(c *Config) { c.Benchmark.Searches = -1 }},
		{"zero place count", func(c *Config) { c.Benchmark.PlaceCounts = []int{10, 0} }},
		{"negative bench depth", func(c *Config) { c.Benchmark.Depths = []int{-1} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "search:\n  max_results: 0\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
