package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	"github.com/1F47E/geo-index-quadtree/pkg/quadtree"
)

func main() {
	// A 1000x1000 map with its top-left corner at the origin, 2 places per node
	tree, err := quadtree.New(geo.NewRectangle(500, 500, 1000, 1000), 2)
	if err != nil {
		log.Fatal(err)
	}

	places := []*models.Place{
		models.NewPlace(models.ToBinary([]models.ServiceType{models.Hotel, models.Restaurant}), 120, 80),
		models.NewPlace(models.ToBinary([]models.ServiceType{models.Coffee}), 140, 95),
		models.NewPlace(models.ToBinary([]models.ServiceType{models.Coffee, models.ATM}), 610, 220),
		models.NewPlace(models.ToBinary([]models.ServiceType{models.GasStation}), 480, 730),
		models.NewPlace(models.ToBinary([]models.ServiceType{models.Hospital}), 905, 910),
		models.NewPlace(models.ToBinary([]models.ServiceType{models.Coffee, models.Hotel}), 150, 60),
		// Outside the map, rejected
		models.NewPlace(models.ToBinary([]models.ServiceType{models.ATM}), 1200, 40),
	}

	for _, p := range places {
		if !tree.Insert(p) {
			fmt.Printf("Rejected %s\n", p)
		}
	}
	stats := tree.Stats()
	fmt.Printf("Indexed %d places in %d nodes (depth %d)\n\n", tree.Len(), stats.Nodes, stats.MaxDepth)

	// Example 1: Everything in the top-left corner
	fmt.Println("=== Places near the top-left corner ===")
	corner := geo.NewRectangle(150, 100, 300, 200)
	for _, p := range tree.Search(corner, models.AnyService, 10) {
		fmt.Printf("  - %s\n", p)
	}

	// Example 2: Coffee anywhere on the map, at most 2 results
	fmt.Println("\n=== Two coffee places ===")
	for _, p := range tree.Search(tree.Bounds(), models.Coffee, 2) {
		fmt.Printf("  - %s\n", p)
	}

	// Example 3: Add a service to an existing place
	fmt.Println("\n=== Edit (480, 730) ===")
	err = tree.Edit(480, 730, func(p *models.Place) error {
		if !p.AddService(models.Coffee) {
			return fmt.Errorf("coffee already offered at (%g, %g)", p.X, p.Y)
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
	if p, ok := tree.Find(480, 730); ok {
		fmt.Printf("  - %s\n", p)
	}

	err = tree.Edit(1, 1, func(*models.Place) error { return nil })
	fmt.Printf("  editing an empty spot: not found = %v\n", errors.Is(err, quadtree.ErrNotFound))

	// Example 4: Remove a place
	fmt.Println("\n=== Remove (140, 95) ===")
	fmt.Printf("  removed: %v\n", tree.Remove(140, 95))
	fmt.Printf("  removed again: %v\n", tree.Remove(140, 95))
	fmt.Printf("  places left: %d, nodes kept: %d\n", tree.Len(), tree.NodeCount())
}
