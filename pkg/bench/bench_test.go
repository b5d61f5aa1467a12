package bench

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/quadtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	testCases := []struct {
		name     string
		samples  []time.Duration
		expected time.Duration
	}{
		{"empty", nil, 0},
		{"single", []time.Duration{5}, 5},
		{"odd", []time.Duration{9, 1, 5, 3, 7}, 5},
		{"even picks upper", []time.Duration{4, 1, 3, 2}, 3},
		{"duplicates", []time.Duration{2, 2, 2, 1}, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Median(tc.samples))
		})
	}
}

func TestToMB(t *testing.T) {
	assert.Equal(t, uint64(0), toMB(1<<20-1))
	assert.Equal(t, uint64(1), toMB(1<<20))
	assert.Equal(t, uint64(3), toMB(3_500_000))
	assert.Equal(t, uint64(95), toMB(100_000_000))
}

func TestSearchRects(t *testing.T) {
	bounds := quadtree.DefaultBounds()
	rects := SearchRects(bounds, 200, rand.New(rand.NewSource(1)))
	require.Len(t, rects, 200)

	for _, r := range rects {
		assert.True(t, bounds.Contains(r.X, r.Y))
		assert.GreaterOrEqual(t, r.Width, 1000.0)
		assert.LessOrEqual(t, r.Width, 5_001_000.0)
		assert.GreaterOrEqual(t, r.Height, 1000.0)
	}
}

func TestTimeSearches(t *testing.T) {
	rects := SearchRects(quadtree.DefaultBounds(), 10, rand.New(rand.NewSource(1)))
	calls := 0
	timing, err := TimeSearches(context.Background(), rects, 5, func(_ context.Context, _ geo.Rectangle, limit int) (int, error) {
		calls++
		return limit, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
	assert.Equal(t, 50, timing.Results)
	assert.LessOrEqual(t, timing.Average, timing.Total)
}

func TestTimeSearchesPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	rects := SearchRects(quadtree.DefaultBounds(), 3, rand.New(rand.NewSource(1)))
	_, err := TimeSearches(context.Background(), rects, 5, func(context.Context, geo.Rectangle, int) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = TimeSearches(ctx, rects, 5, TreeSearch(nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	var progress []int
	cfg := Config{
		PlaceCounts: []int{400, 1000},
		Depths:      []int{1, 3},
		Searches:    20,
		SearchLimit: 50,
		Seed:        7,
		Verify:      true,
		Progress: func(done, total int, _ Row) {
			assert.Equal(t, 4, total)
			progress = append(progress, done)
		},
	}

	rows, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, progress)

	assert.Equal(t, 1, rows[0].Depth)
	assert.Equal(t, 400, rows[0].NodeCount)
	assert.Equal(t, quadtree.IdealCapacity(400, 1), rows[0].Capacity)
	assert.Equal(t, 3, rows[3].Depth)
	assert.Equal(t, 1000, rows[3].NodeCount)

	for _, row := range rows {
		assert.Greater(t, row.TreeNodes, 1)
		assert.LessOrEqual(t, row.Results, 20*50)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows, err := Run(ctx, Config{PlaceCounts: []int{10}, Depths: []int{1}})
	assert.Empty(t, rows)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{Depth: 1, NodeCount: 1000, InitializationTime: 12 * time.Millisecond, MemoryUsage: 3, SearchTime: 1500 * time.Microsecond},
		{Depth: 2, NodeCount: 1000, InitializationTime: 9 * time.Millisecond, MemoryUsage: 4, SearchTime: 250 * time.Microsecond},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Equal(t, "Depth,NodeCount,InitializationTime,MemoryUsage,SearchTime\n"+
		"1,1000,12,3,1.50\n"+
		"2,1000,9,4,0.25\n", buf.String())
}

func TestAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	row := Row{Depth: 3, NodeCount: 10}

	require.NoError(t, AppendCSV(path, []Row{row}))
	require.NoError(t, AppendCSV(path, []Row{row}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Depth,NodeCount,InitializationTime,MemoryUsage,SearchTime", lines[0])
	assert.Equal(t, "3,10,0,0,0.00", lines[2])
}

func TestAppendCSVBadPath(t *testing.T) {
	err := AppendCSV(filepath.Join(t.TempDir(), "missing", "results.csv"), nil)
	assert.ErrorContains(t, err, "failed to open")
}
