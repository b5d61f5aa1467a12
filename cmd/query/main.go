package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/1F47E/geo-index-quadtree/pkg/config"
	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	"github.com/1F47E/geo-index-quadtree/pkg/quadtree"
)

type output struct {
	Query   geo.Rectangle   `json:"query"`
	Service string          `json:"service"`
	Took    string          `json:"took"`
	Stats   quadtree.Stats  `json:"tree"`
	Places  []*models.Place `json:"places"`
}

func main() {
	var (
		configFile = flag.String("config", config.DefaultPath, "Config file path")
		numPlaces  = flag.Int("places", 100000, "Number of random places to generate")
		seed       = flag.Int64("seed", 1, "Random seed")
		capacity   = flag.Int("capacity", 0, "Node capacity (0 derives it from places and config depth)")
		// Search rectangle
		x      = flag.Float64("x", 0, "Centre x of the search rectangle")
		y      = flag.Float64("y", 0, "Centre y of the search rectangle")
		width  = flag.Float64("w", 0, "Width of the search rectangle")
		height = flag.Float64("h", 0, "Height of the search rectangle")
		// Service filter
		service = flag.Int("service", -1, "Service index 0-5 (-1 for any)")
		limit   = flag.Int("limit", 50, "Maximum number of results")
		// Output format
		outputJSON = flag.Bool("json", false, "Output results as JSON")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.Tree.Places = *numPlaces
	if *capacity > 0 {
		cfg.Tree.Capacity = *capacity
	}

	if *width == 0 && *height == 0 {
		log.Fatal("Search requires -w and -h for the rectangle size")
	}

	filter := models.AnyService
	if *service >= 0 {
		if filter, err = models.ServiceFromIndex(*service); err != nil {
			log.Fatalf("Bad service: %v", err)
		}
	}

	tree, err := quadtree.New(cfg.Bounds(), cfg.TreeCapacity())
	if err != nil {
		log.Fatalf("Failed to create tree: %v", err)
	}
	inserted := quadtree.GenerateRandomData(tree, *numPlaces, rand.New(rand.NewSource(*seed)))
	log.Printf("Tree built with %d places\n", inserted)

	rng := geo.NewRectangle(*x, *y, *width, *height)
	start := time.Now()
	results := tree.Search(rng, filter, *limit)
	took := time.Since(start)
	log.Printf("Search found %d places in %v\n", len(results), took)

	if *outputJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		err := encoder.Encode(output{
			Query:   rng,
			Service: filter.String(),
			Took:    took.String(),
			Stats:   tree.Stats(),
			Places:  results,
		})
		if err != nil {
			log.Fatalf("Failed to encode results: %v", err)
		}
		return
	}

	for i, p := range results {
		fmt.Printf("%d. %s: (%.2f, %.2f)\n", i+1, p.Services, p.X, p.Y)
	}
}
