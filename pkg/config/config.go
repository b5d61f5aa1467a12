// Package config loads the YAML settings shared by the binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/quadtree"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "config.yaml"
	ExamplePath = "config.yaml.example"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config structure for YAML configuration
type Config struct {
	Map struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"map"`
	Tree struct {
		Places   int `yaml:"places"`
		Depth    int `yaml:"depth"`
		Capacity int `yaml:"capacity"`
	} `yaml:"tree"`
	Search struct {
		MaxResults int `yaml:"max_results"`
	} `yaml:"search"`
	Benchmark struct {
		PlaceCounts []int  `yaml:"place_counts"`
		Depths      []int  `yaml:"depths"`
		Searches    int    `yaml:"searches"`
		SearchLimit int    `yaml:"search_limit"`
		Seed        int64  `yaml:"seed"`
		Output      string `yaml:"output"`
		Verify      bool   `yaml:"verify"`
	} `yaml:"benchmark"`
	PostGIS struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		User           string `yaml:"user"`
		Password       string `yaml:"password"`
		Database       string `yaml:"database"`
		MaxConnections int    `yaml:"max_connections"`
	} `yaml:"postgis"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

// Default returns the settings used when no config file is present.
func Default() *Config {
	c := &Config{}
	c.Map.Width = quadtree.DefaultMapSize
	c.Map.Height = quadtree.DefaultMapSize

	c.Tree.Places = 1_000_000
	c.Tree.Depth = 8

	c.Search.MaxResults = 50

	c.Benchmark.PlaceCounts = []int{10_000, 100_000, 1_000_000}
	c.Benchmark.Depths = []int{2, 4, 6, 8, 10}
	c.Benchmark.Searches = 1000
	c.Benchmark.SearchLimit = 50
	c.Benchmark.Seed = 1
	c.Benchmark.Output = "benchmark_results.csv"

	c.PostGIS.Host = "localhost"
	c.PostGIS.Port = 5432
	c.PostGIS.User = "postgres"
	c.PostGIS.Password = "postgres"
	c.PostGIS.Database = "geodb"
	c.PostGIS.MaxConnections = 25
	return c
}

// Load reads path over the defaults. When path is DefaultPath and it does
// not exist, ExamplePath is tried next; when neither exists the defaults are
// returned. Any other missing path is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	candidates := []string{path}
	if path == DefaultPath {
		candidates = append(candidates, ExamplePath)
	}

	cfg := Default()
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", candidate, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", candidate, err)
		}
		cfg.Source = candidate
		return cfg, cfg.Validate()
	}

	if path != DefaultPath {
		return nil, fmt.Errorf("config %s not found: %w", path, fs.ErrNotExist)
	}
	return cfg, nil
}

// Validate checks the values the binaries rely on.
func (c *Config) Validate() error {
	switch {
	case c.Map.Width <= 0 || c.Map.Height <= 0:
		return fmt.Errorf("%w: map size must be positive, got %gx%g", ErrInvalidConfig, c.Map.Width, c.Map.Height)
	case c.Tree.Places < 0:
		return fmt.Errorf("%w: tree.places must not be negative", ErrInvalidConfig)
	case c.Tree.Depth < 0:
		return fmt.Errorf("%w: tree.depth must not be negative", ErrInvalidConfig)
	case c.Tree.Capacity < 0:
		return fmt.Errorf("%w: tree.capacity must not be negative", ErrInvalidConfig)
	case c.Search.MaxResults < 1:
		return fmt.Errorf("%w: search.max_results must be at least 1", ErrInvalidConfig)
	case c.Benchmark.Searches < 0:
		return fmt.Errorf("%w: benchmark.searches must not be negative", ErrInvalidConfig)
	}
	for _, n := range c.Benchmark.PlaceCounts {
		if n < 1 {
			return fmt.Errorf("%w: benchmark.place_counts must be positive, got %d", ErrInvalidConfig, n)
		}
	}
	for _, d := range c.Benchmark.Depths {
		if d < 0 {
			return fmt.Errorf("%w: benchmark.depths must not be negative, got %d", ErrInvalidConfig, d)
		}
	}
	return nil
}

// Bounds returns the map area with its top-left corner at the origin.
func (c *Config) Bounds() geo.Rectangle {
	return geo.NewRectangle(c.Map.Width/2, c.Map.Height/2, c.Map.Width, c.Map.Height)
}

// TreeCapacity returns tree.capacity when set, otherwise the capacity that
// fits tree.places into a tree of tree.depth levels.
func (c *Config) TreeCapacity() int {
	if c.Tree.Capacity > 0 {
		return c.Tree.Capacity
	}
	return quadtree.IdealCapacity(c.Tree.Places, c.Tree.Depth)
}
