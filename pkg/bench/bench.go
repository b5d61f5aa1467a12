// Package bench measures how node capacity affects build time, memory and
// search latency of the quadtree.
package bench

import (
	"context"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	"github.com/1F47E/geo-index-quadtree/pkg/quadtree"
	"github.com/1F47E/geo-index-quadtree/pkg/rtree"
	"github.com/keegancsmith/nth"
	"github.com/pkg/errors"
)

var ErrVerifyMismatch = errors.New("quadtree and reference index disagree")

// Config describes one benchmark run. Every place count is combined with
// every depth.
type Config struct {
	Bounds      geo.Rectangle
	PlaceCounts []int
	Depths      []int
	Searches    int
	SearchLimit int
	Seed        int64
	// Verify mirrors every tree into the rtree reference index and checks
	// that both return the same number of places for each search rectangle.
	Verify bool
	// Progress, when set, is called after each finished row.
	Progress func(done, total int, row Row)
}

// Row is one line of the results table.
type Row struct {
	Depth    int `json:"depth"`
	Capacity int `json:"capacity"`
	// NodeCount is the number of places inserted, named after the CSV column.
	NodeCount          int           `json:"node_count"`
	TreeNodes          int           `json:"tree_nodes"`
	InitializationTime time.Duration `json:"initialization_time"`
	MemoryUsage        uint64        `json:"memory_usage_mb"`
	SearchTime         time.Duration `json:"search_time"`
	MedianSearchTime   time.Duration `json:"median_search_time"`
	Results            int           `json:"results"`
}

// SearchFunc runs one range search and returns the number of places found.
type SearchFunc func(ctx context.Context, rng geo.Rectangle, limit int) (int, error)

// Timing summarises the latency of a batch of searches.
type Timing struct {
	Total   time.Duration
	Average time.Duration
	Median  time.Duration
	Results int
}

type durations []time.Duration

func (d durations) Len() int           { return len(d) }
func (d durations) Less(i, j int) bool { return d[i] < d[j] }
func (d durations) Swap(i, j int)      { d[i], d[j] = d[j], d[i] }

var _ sort.Interface = durations(nil)

// Median returns the median of samples, reordering them in the process.
func Median(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	mid := len(samples) / 2
	nth.Element(durations(samples), mid)
	return samples[mid]
}

// SearchRects returns n random query rectangles inside bounds. Their sides
// range from 1/10000 to just over half of the map side.
func SearchRects(bounds geo.Rectangle, n int, r *rand.Rand) []geo.Rectangle {
	rects := make([]geo.Rectangle, 0, max(n, 0))
	for i := 0; i < n; i++ {
		x := bounds.Left() + r.Float64()*bounds.Width
		y := bounds.Top() + r.Float64()*bounds.Height
		w := bounds.Width/10000 + r.Float64()*bounds.Width/2
		h := bounds.Height/10000 + r.Float64()*bounds.Height/2
		rects = append(rects, geo.NewRectangle(x, y, w, h))
	}
	return rects
}

// TimeSearches runs fn once per rectangle and measures each call.
func TimeSearches(ctx context.Context, rects []geo.Rectangle, limit int, fn SearchFunc) (Timing, error) {
	var t Timing
	if len(rects) == 0 {
		return t, nil
	}

	samples := make([]time.Duration, 0, len(rects))
	for i, rng := range rects {
		if err := ctx.Err(); err != nil {
			return t, errors.Wrap(err, "search benchmark interrupted")
		}
		start := time.Now()
		n, err := fn(ctx, rng, limit)
		elapsed := time.Since(start)
		if err != nil {
			return t, errors.Wrapf(err, "search %d failed", i)
		}
		samples = append(samples, elapsed)
		t.Total += elapsed
		t.Results += n
	}

	t.Average = t.Total / time.Duration(len(samples))
	t.Median = Median(samples)
	return t, nil
}

// TreeSearch adapts t to a SearchFunc without a service filter.
func TreeSearch(t *quadtree.Tree) SearchFunc {
	return func(_ context.Context, rng geo.Rectangle, limit int) (int, error) {
		return len(t.Search(rng, models.AnyService, limit)), nil
	}
}

// Run builds one tree per place count and depth and measures it.
func Run(ctx context.Context, cfg Config) ([]Row, error) {
	if cfg.Bounds.Width == 0 || cfg.Bounds.Height == 0 {
		cfg.Bounds = quadtree.DefaultBounds()
	}

	total := len(cfg.PlaceCounts) * len(cfg.Depths)
	rows := make([]Row, 0, total)
	r := rand.New(rand.NewSource(cfg.Seed))

	for _, count := range cfg.PlaceCounts {
		for _, depth := range cfg.Depths {
			if err := ctx.Err(); err != nil {
				return rows, errors.Wrap(err, "benchmark interrupted")
			}

			row, err := runOne(ctx, cfg, count, depth, r)
			if err != nil {
				return rows, err
			}
			rows = append(rows, row)
			if cfg.Progress != nil {
				cfg.Progress(len(rows), total, row)
			}
		}
	}
	return rows, nil
}

func runOne(ctx context.Context, cfg Config, count, depth int, r *rand.Rand) (Row, error) {
	capacity := quadtree.IdealCapacity(count, depth)
	tree, err := quadtree.New(cfg.Bounds, capacity)
	if err != nil {
		return Row{}, errors.Wrapf(err, "failed to create tree for depth %d", depth)
	}

	places := quadtree.RandomPlaces(cfg.Bounds, count, r)

	start := time.Now()
	for _, p := range places {
		tree.Insert(p)
	}
	initTime := time.Since(start)

	row := Row{
		Depth:              depth,
		Capacity:           capacity,
		NodeCount:          tree.Len(),
		TreeNodes:          tree.NodeCount(),
		InitializationTime: initTime,
		MemoryUsage:        heapInUseMB(),
	}

	rects := SearchRects(cfg.Bounds, cfg.Searches, r)
	timing, err := TimeSearches(ctx, rects, cfg.SearchLimit, TreeSearch(tree))
	if err != nil {
		return row, err
	}
	row.SearchTime = timing.Average
	row.MedianSearchTime = timing.Median
	row.Results = timing.Results

	if cfg.Verify {
		reference := rtree.NewReferenceIndex()
		reference.Insert(places...)
		if err := verify(tree, reference, rects); err != nil {
			return row, errors.Wrapf(err, "depth %d, %d places", depth, count)
		}
	}

	// Keep the tree alive until its memory has been measured and searched.
	runtime.KeepAlive(tree)
	return row, nil
}

func verify(tree *quadtree.Tree, reference *rtree.ReferenceIndex, rects []geo.Rectangle) error {
	for i, rng := range rects {
		got := len(tree.Search(rng, models.AnyService, tree.Len()))
		want := len(reference.Search(rng, models.AnyService, 0))
		if got != want {
			return errors.Wrapf(ErrVerifyMismatch, "search %d %v: quadtree %d, reference %d", i, rng, got, want)
		}
	}
	return nil
}

func heapInUseMB() uint64 {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return toMB(m.HeapInuse)
}

// toMB converts bytes to whole mebibytes, rounding down.
func toMB(b uint64) uint64 {
	return b >> 20
}
