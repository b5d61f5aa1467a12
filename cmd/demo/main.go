package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/1F47E/geo-index-quadtree/pkg/bench"
	"github.com/1F47E/geo-index-quadtree/pkg/config"
	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	"github.com/1F47E/geo-index-quadtree/pkg/quadtree"
	"github.com/1F47E/geo-index-quadtree/pkg/rtree"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

type stage int

const (
	stageLoading stage = iota
	stageSearching
	stageVerifying
	stageDone
)

// demoConfig is what the background run needs from the config file.
type demoConfig struct {
	places   int
	capacity int
	searches int
	limit    int
	seed     int64
	cfg      *config.Config
}

type loadStats struct {
	places   int
	nodes    int
	depth    int
	capacity int
	duration time.Duration
}

type progressMsg float64
type messageMsg string
type errMsg struct{ err error }
type loadDoneMsg loadStats
type searchDoneMsg bench.Timing
type verifyDoneMsg struct{ mismatches, checked int }

type model struct {
	stage           stage
	spinner         spinner.Model
	progress        progress.Model
	progressPercent float64
	settings        demoConfig

	load     loadStats
	search   bench.Timing
	verified verifyDoneMsg
	err      error

	messages []string
	width    int
	height   int
}

func initialModel(settings demoConfig) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		stage:    stageLoading,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		settings: settings,
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(msg.Width-10, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		m.progressPercent = float64(msg)
		return m, m.progress.SetPercent(float64(msg))

	case messageMsg:
		m.messages = append(m.messages, string(msg))
		if len(m.messages) > 5 {
			m.messages = m.messages[1:]
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.stage = stageDone
		return m, nil

	case loadDoneMsg:
		m.load = loadStats(msg)
		m.stage = stageSearching
		m.progressPercent = 0
		return m, nil

	case searchDoneMsg:
		m.search = bench.Timing(msg)
		m.stage = stageVerifying
		m.progressPercent = 0
		return m, nil

	case verifyDoneMsg:
		m.verified = msg
		m.stage = stageDone
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🌍 Go Quadtree Demo"))
	b.WriteString("\n\n")

	switch m.stage {
	case stageLoading:
		b.WriteString(subtitleStyle.Render("Building Quadtree"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s Inserting %d random places...\n\n", m.spinner.View(), m.settings.places))
		b.WriteString(m.progress.ViewAs(m.progressPercent))

	case stageSearching:
		b.WriteString(renderLoadStats(m.load))
		b.WriteString(subtitleStyle.Render("Running Range Searches"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s Executing %d searches (limit %d)...\n\n", m.spinner.View(), m.settings.searches, m.settings.limit))
		b.WriteString(m.progress.ViewAs(m.progressPercent))

	case stageVerifying:
		b.WriteString(renderSearchStats(m.search, m.settings.searches))
		b.WriteString(subtitleStyle.Render("Cross-checking Against R-Tree"))
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View() + " Comparing unlimited search results...\n\n")
		b.WriteString(m.progress.ViewAs(m.progressPercent))

	case stageDone:
		b.WriteString(renderSummary(m))
	}

	if len(m.messages) > 0 {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Recent activity:"))
		b.WriteString("\n")
		for _, msg := range m.messages {
			b.WriteString(dimStyle.Render("• " + msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Press 'q' to quit"))

	return b.String()
}

func renderLoadStats(s loadStats) string {
	stats := fmt.Sprintf(
		"✓ Inserted %s places in %s\n"+
			"✓ Places per second: %s\n"+
			"✓ Node capacity %s, %s nodes, depth %s",
		statStyle.Render(fmt.Sprintf("%d", s.places)),
		statStyle.Render(s.duration.String()),
		statStyle.Render(fmt.Sprintf("%.0f", float64(s.places)/s.duration.Seconds())),
		statStyle.Render(fmt.Sprintf("%d", s.capacity)),
		statStyle.Render(fmt.Sprintf("%d", s.nodes)),
		statStyle.Render(fmt.Sprintf("%d", s.depth)),
	)
	return boxStyle.Render(successStyle.Render("Build Complete!\n\n") + stats)
}

func renderSearchStats(t bench.Timing, searches int) string {
	content := fmt.Sprintf(
		"✓ Total searches: %s\n"+
			"✓ Total time: %s\n"+
			"✓ Average search time: %s\n"+
			"✓ Median search time: %s\n"+
			"✓ Total places found: %s",
		statStyle.Render(fmt.Sprintf("%d", searches)),
		statStyle.Render(t.Total.String()),
		statStyle.Render(t.Average.String()),
		statStyle.Render(t.Median.String()),
		statStyle.Render(fmt.Sprintf("%d", t.Results)),
	)
	return boxStyle.Render(successStyle.Render("Searches Complete!\n\n") + content)
}

func renderSummary(m model) string {
	if m.err != nil {
		return boxStyle.Render(errorStyle.Render("Demo failed: " + m.err.Error()))
	}

	summary := titleStyle.Render("🎉 Demo Complete!")
	summary += "\n\n"
	summary += infoStyle.Render("The quadtree demonstrated:")
	summary += "\n\n"

	verify := successStyle.Render(fmt.Sprintf("• All %d searches matched the R-Tree", m.verified.checked))
	if m.verified.mismatches > 0 {
		verify = errorStyle.Render(fmt.Sprintf("• %d of %d searches differed from the R-Tree", m.verified.mismatches, m.verified.checked))
	}

	summary += successStyle.Render(fmt.Sprintf("• Capacity-triggered subdivision into %d nodes", m.load.nodes)) + "\n"
	summary += successStyle.Render(fmt.Sprintf("• Pruned range searches with a cap of %d", m.settings.limit)) + "\n"
	summary += verify + "\n\n"

	perSec := 0.0
	if m.search.Total > 0 {
		perSec = float64(m.settings.searches) / m.search.Total.Seconds()
	}
	summary += boxStyle.Render(
		infoStyle.Render("Performance Summary:\n\n") +
			fmt.Sprintf("Total places indexed: %s\n", statStyle.Render(fmt.Sprintf("%d", m.load.places))) +
			fmt.Sprintf("Index creation time: %s\n", statStyle.Render(m.load.duration.String())) +
			fmt.Sprintf("Search throughput: %s", statStyle.Render(fmt.Sprintf("~%.0f searches/sec", perSec))),
	)
	return summary
}

var program *tea.Program

// executeDemo builds the tree, runs the searches and verifies them, reporting
// each step to the program.
func executeDemo(ctx context.Context, s demoConfig) {
	r := rand.New(rand.NewSource(s.seed))
	bounds := s.cfg.Bounds()

	tree, err := quadtree.New(bounds, s.capacity)
	if err != nil {
		program.Send(errMsg{err})
		return
	}
	places := quadtree.RandomPlaces(bounds, s.places, r)

	start := time.Now()
	step := max(len(places)/100, 1)
	for i, p := range places {
		tree.Insert(p)
		if i%step == 0 {
			program.Send(progressMsg(float64(i) / float64(len(places))))
		}
	}
	elapsed := time.Since(start)
	program.Send(progressMsg(1))
	program.Send(messageMsg(fmt.Sprintf("inserted %d places", tree.Len())))

	stats := tree.Stats()
	program.Send(loadDoneMsg{
		places:   tree.Len(),
		nodes:    stats.Nodes,
		depth:    stats.MaxDepth,
		capacity: tree.Capacity(),
		duration: elapsed,
	})

	rects := bench.SearchRects(bounds, s.searches, r)
	done := 0
	search := bench.TreeSearch(tree)
	timing, err := bench.TimeSearches(ctx, rects, s.limit, func(ctx context.Context, rng geo.Rectangle, limit int) (int, error) {
		done++
		if done%max(len(rects)/50, 1) == 0 {
			program.Send(progressMsg(float64(done) / float64(len(rects))))
		}
		return search(ctx, rng, limit)
	})
	if err != nil {
		program.Send(errMsg{err})
		return
	}
	program.Send(searchDoneMsg(timing))

	reference := rtree.NewReferenceIndex()
	reference.Insert(places...)
	program.Send(messageMsg(fmt.Sprintf("R-Tree reference holds %d places", reference.Count())))

	mismatches := 0
	for i, rng := range rects {
		got := len(tree.Search(rng, models.AnyService, tree.Len()))
		want := len(reference.Search(rng, models.AnyService, 0))
		if got != want {
			mismatches++
			program.Send(messageMsg(fmt.Sprintf("search %d: quadtree %d, R-Tree %d", i, got, want)))
		}
		program.Send(progressMsg(float64(i+1) / float64(len(rects))))
	}
	program.Send(verifyDoneMsg{mismatches: mismatches, checked: len(rects)})
}

func main() {
	var (
		configFile = flag.String("config", config.DefaultPath, "Config file path")
		places     = flag.Int("places", 0, "Number of places (default from config)")
		searches   = flag.Int("searches", 0, "Number of searches (default from config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *places > 0 {
		cfg.Tree.Places = *places
	}

	settings := demoConfig{
		places:   cfg.Tree.Places,
		capacity: cfg.TreeCapacity(),
		searches: cfg.Benchmark.Searches,
		limit:    cfg.Benchmark.SearchLimit,
		seed:     cfg.Benchmark.Seed,
		cfg:      cfg,
	}
	if *searches > 0 {
		settings.searches = *searches
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program = tea.NewProgram(initialModel(settings))
	go executeDemo(ctx, settings)

	if _, err := program.Run(); err != nil {
		log.Fatalf("Error running demo: %v", err)
	}
}
