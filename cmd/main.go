package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/1F47E/geo-index-quadtree/pkg/bench"
	"github.com/1F47E/geo-index-quadtree/pkg/config"
	"github.com/1F47E/geo-index-quadtree/pkg/console"
	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	"github.com/1F47E/geo-index-quadtree/pkg/postgis"
	"github.com/1F47E/geo-index-quadtree/pkg/quadtree"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "geo-quadtree",
	Short: "Bounded-capacity quadtree of places with service filters",
	Long:  `Index places offering hotel, coffee, restaurant, ATM, gas station and hospital services in a quadtree and query them by rectangle.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if verbose && cfg.Source != "" {
			log.Printf("Using config %s", cfg.Source)
		}
		return nil
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive menu over a randomly initialised map",
	Long:  `Fill the map with random places, then insert, remove, search and edit places from the keyboard.`,
	RunE:  runConsole,
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure build time, memory and search time per tree depth",
	Long:  `Build one tree per place count and depth, time random searches and append the results to a CSV file.`,
	RunE:  runBench,
}

var depthCmd = &cobra.Command{
	Use:   "depth",
	Short: "Find the ideal tree depth for a number of places",
	Long:  `Print build time, memory and search time per depth without writing a CSV file.`,
	RunE:  runDepth,
}

var (
	numPlaces   int
	seed        int64
	placeCounts []int
	depths      []int
	numSearches int
	searchLimit int
	outputFile  string
	verifyFlag  bool
	withPostGIS bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	consoleCmd.Flags().IntVarP(&numPlaces, "places", "p", -1, "Number of random places to start with (default from config)")
	consoleCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses the clock)")

	for _, c := range []*cobra.Command{benchCmd, depthCmd} {
		c.Flags().IntSliceVarP(&placeCounts, "places", "p", nil, "Place counts to benchmark (default from config)")
		c.Flags().IntSliceVarP(&depths, "depths", "d", nil, "Tree depths to benchmark (default from config)")
		c.Flags().IntVarP(&numSearches, "searches", "s", -1, "Random searches per tree (default from config)")
		c.Flags().IntVar(&searchLimit, "limit", -1, "Result cap per search (default from config)")
		c.Flags().Int64Var(&seed, "seed", 0, "Random seed (default from config)")
		c.Flags().BoolVar(&verifyFlag, "verify", false, "Check every search against an R-Tree")
	}
	benchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "CSV file to append to (default from config)")
	benchCmd.Flags().BoolVar(&withPostGIS, "postgis", false, "Also time the same searches against PostGIS")

	rootCmd.AddCommand(consoleCmd, benchCmd, depthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func runConsole(cmd *cobra.Command, args []string) error {
	places := cfg.Tree.Places
	if numPlaces >= 0 {
		places = numPlaces
	}
	cfg.Tree.Places = places
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	tree, err := quadtree.New(cfg.Bounds(), cfg.TreeCapacity())
	if err != nil {
		return fmt.Errorf("failed to create tree: %w", err)
	}

	start := time.Now()
	inserted := quadtree.GenerateRandomData(tree, places, rand.New(rand.NewSource(seed)))
	log.Printf("Initialised %d places (capacity %d, %d nodes) in %v", inserted, tree.Capacity(), tree.NodeCount(), time.Since(start))

	return console.New(tree, os.Stdin, os.Stdout,
		console.WithColor(isTerminal()),
		console.WithMaxResults(cfg.Search.MaxResults),
	).Run()
}

func benchConfig(cmd *cobra.Command) bench.Config {
	bc := bench.Config{
		Bounds:      cfg.Bounds(),
		PlaceCounts: cfg.Benchmark.PlaceCounts,
		Depths:      cfg.Benchmark.Depths,
		Searches:    cfg.Benchmark.Searches,
		SearchLimit: cfg.Benchmark.SearchLimit,
		Seed:        cfg.Benchmark.Seed,
		Verify:      cfg.Benchmark.Verify || verifyFlag,
	}
	if cmd.Flags().Changed("places") {
		bc.PlaceCounts = placeCounts
	}
	if cmd.Flags().Changed("depths") {
		bc.Depths = depths
	}
	if numSearches >= 0 {
		bc.Searches = numSearches
	}
	if searchLimit >= 0 {
		bc.SearchLimit = searchLimit
	}
	if cmd.Flags().Changed("seed") {
		bc.Seed = seed
	}

	lastCount := -1
	bc.Progress = func(done, total int, row bench.Row) {
		if row.NodeCount != lastCount {
			lastCount = row.NodeCount
			fmt.Println("##########################################################################")
			fmt.Printf("Number of places: %d\n", row.NodeCount)
		}
		fmt.Println("------------------------------------")
		fmt.Printf("Depth: %d; Capacity per node: %d; Nodes: %d; Initialization Time: %v; Memory Usage: %dMB\n",
			row.Depth, row.Capacity, row.TreeNodes, row.InitializationTime, row.MemoryUsage)
		fmt.Printf("Average search time for %d searches: %v (median %v)\n", bc.Searches, row.SearchTime, row.MedianSearchTime)
		if verbose {
			log.Printf("[%d/%d] %d results in total", done, total, row.Results)
		}
	}
	return bc
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bc := benchConfig(cmd)
	output := cfg.Benchmark.Output
	if outputFile != "" {
		output = outputFile
	}

	rows, err := bench.Run(ctx, bc)
	if len(rows) > 0 {
		if werr := bench.AppendCSV(output, rows); werr != nil {
			return werr
		}
		fmt.Printf("\nWrote %d rows to %s\n", len(rows), output)
	}
	if err != nil {
		return err
	}

	if withPostGIS {
		return comparePostGIS(ctx, bc)
	}
	return nil
}

func runDepth(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rows, err := bench.Run(ctx, benchConfig(cmd))
	if err != nil {
		return err
	}

	fmt.Println()
	for i := 0; i < len(rows); {
		best, j := rows[i], i
		for ; j < len(rows) && rows[j].NodeCount == rows[i].NodeCount; j++ {
			if rows[j].SearchTime < best.SearchTime {
				best = rows[j]
			}
		}
		fmt.Printf("Fastest search for %d places at depth %d (capacity %d)\n", best.NodeCount, best.Depth, best.Capacity)
		i = j
	}
	return nil
}

// comparePostGIS loads the same random places into PostGIS and the quadtree
// and times identical searches against both.
func comparePostGIS(ctx context.Context, bc bench.Config) error {
	db, err := postgis.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to PostGIS: %w", err)
	}
	defer db.Close()

	r := rand.New(rand.NewSource(bc.Seed))
	for _, count := range bc.PlaceCounts {
		places := quadtree.RandomPlaces(bc.Bounds, count, r)

		tree, err := quadtree.New(bc.Bounds, cfg.TreeCapacity())
		if err != nil {
			return fmt.Errorf("failed to create tree: %w", err)
		}
		for _, p := range places {
			tree.Insert(p)
		}

		start := time.Now()
		if err := db.InitSchema(ctx); err != nil {
			return err
		}
		if err := db.BulkInsertPlaces(ctx, places); err != nil {
			return err
		}
		if err := db.CreateSpatialIndex(ctx); err != nil {
			return err
		}
		log.Printf("Loaded %d places into PostGIS in %v", count, time.Since(start))

		rects := bench.SearchRects(bc.Bounds, bc.Searches, r)
		treeTiming, err := bench.TimeSearches(ctx, rects, bc.SearchLimit, bench.TreeSearch(tree))
		if err != nil {
			return err
		}
		dbTiming, err := bench.TimeSearches(ctx, rects, bc.SearchLimit,
			func(ctx context.Context, rng geo.Rectangle, limit int) (int, error) {
				found, err := db.QueryBox(ctx, rng, models.AnyService, limit)
				return len(found), err
			})
		if err != nil {
			return err
		}

		fmt.Println("------------------------------------")
		fmt.Printf("Places: %d; searches: %d; limit: %d\n", count, len(rects), bc.SearchLimit)
		fmt.Printf("  Quadtree: avg %v, median %v\n", treeTiming.Average, treeTiming.Median)
		fmt.Printf("  PostGIS:  avg %v, median %v\n", dbTiming.Average, dbTiming.Median)
	}
	return nil
}
