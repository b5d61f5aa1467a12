// Package console is the interactive text menu over a quadtree: insert,
// remove, search and edit places by typing whitespace separated tokens.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/1F47E/geo-index-quadtree/pkg/geo"
	"github.com/1F47E/geo-index-quadtree/pkg/models"
	"github.com/1F47E/geo-index-quadtree/pkg/quadtree"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// MaxSearchResults is the largest result cap a search may ask for.
const MaxSearchResults = 50

const separator = "----------------------------"

// anyServiceToken selects no service filter in a search.
const anyServiceToken = "*"

var errBadNumber = errors.New("invalid number")

type styles struct {
	title   lipgloss.Style
	prompt  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style
	stat    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF79C6")),
		prompt:  r.NewStyle().Foreground(lipgloss.Color("#8BE9FD")),
		success: r.NewStyle().Foreground(lipgloss.Color("#50FA7B")),
		failure: r.NewStyle().Foreground(lipgloss.Color("#FF5555")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("#6272A4")),
		stat:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB86C")),
	}
}

// Console reads commands from an input stream and applies them to a tree.
type Console struct {
	tree       *quadtree.Tree
	in         *bufio.Scanner
	out        io.Writer
	maxResults int
	color      bool
	style      styles
}

type Option func(*Console)

// WithColor enables or disables ANSI styling of the output.
func WithColor(enabled bool) Option {
	return func(c *Console) { c.color = enabled }
}

// WithMaxResults lowers the search cap below MaxSearchResults.
func WithMaxResults(n int) Option {
	return func(c *Console) {
		if n > 0 && n < MaxSearchResults {
			c.maxResults = n
		}
	}
}

// New creates a console over tree.
func New(tree *quadtree.Tree, in io.Reader, out io.Writer, opts ...Option) *Console {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)

	c := &Console{
		tree:       tree,
		in:         scanner,
		out:        out,
		maxResults: MaxSearchResults,
	}
	for _, opt := range opts {
		opt(c)
	}

	renderer := lipgloss.NewRenderer(out)
	if !c.color {
		renderer.SetColorProfile(termenv.Ascii)
	}
	c.style = newStyles(renderer)
	return c
}

// Run shows the menu until the user picks Exit or the input ends.
func (c *Console) Run() error {
	c.println(c.style.title.Render(fmt.Sprintf("Quadtree map with %d places", c.tree.Len())))
	for {
		c.menu()
		choice, err := c.next()
		if errors.Is(err, io.EOF) {
			c.println("")
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = c.insert()
		case "2":
			err = c.remove()
		case "3":
			err = c.search()
		case "4":
			err = c.edit()
		case "5":
			return nil
		default:
			c.println(c.style.failure.Render("Invalid choice"))
			continue
		}

		switch {
		case errors.Is(err, io.EOF):
			c.println("")
			return nil
		case errors.Is(err, errBadNumber), errors.Is(err, models.ErrInvalidIndex):
			c.println(c.style.failure.Render(err.Error()))
		case err != nil:
			return err
		}
	}
}

func (c *Console) menu() {
	c.println(c.style.dim.Render(separator))
	c.println("1. Insert a place")
	c.println("2. Remove a place")
	c.println("3. Search for places")
	c.println("4. Edit a place")
	c.println("5. Exit")
	c.println(c.style.dim.Render(separator))
	c.prompt("Enter your choice: ")
}

func (c *Console) serviceTypes() {
	c.println(c.style.dim.Render(separator))
	c.println("Service types:")
	for i, s := range models.AllServices() {
		c.println(fmt.Sprintf("%d - %s", i, s))
	}
	c.println(c.style.dim.Render(separator))
}

func (c *Console) insert() error {
	var services []models.ServiceType
	for {
		c.serviceTypes()
		c.prompt("Choose service type you want to add: ")
		service, err := c.nextService()
		if err != nil {
			return err
		}
		services = append(services, service)

		c.prompt("Press 'x' to exit or else to continue adding service type: ")
		token, err := c.next()
		if err != nil {
			return err
		}
		if token == "x" {
			break
		}
	}

	x, y, err := c.coordinates()
	if err != nil {
		return err
	}

	place := models.NewPlace(models.ToBinary(services), x, y)
	c.println("Inserting a place: " + place.String())
	if c.tree.Insert(place) {
		c.println(c.style.success.Render("Place inserted successfully"))
	} else {
		c.println(c.style.failure.Render("Place inserted unsuccessfully: outside " + c.tree.Bounds().String()))
	}
	return nil
}

func (c *Console) remove() error {
	x, y, err := c.coordinates()
	if err != nil {
		return err
	}
	if c.tree.Remove(x, y) {
		c.println(c.style.success.Render("Place removed successfully!"))
	} else {
		c.println(c.style.failure.Render("Place not found"))
	}
	return nil
}

func (c *Console) search() error {
	c.prompt("Please enter the center point x: ")
	x, err := c.nextFloat()
	if err != nil {
		return err
	}
	c.prompt("Please enter the center point y: ")
	y, err := c.nextFloat()
	if err != nil {
		return err
	}
	c.prompt("Please enter the width from center point: ")
	w, err := c.nextFloat()
	if err != nil {
		return err
	}
	c.prompt("Please enter the height from center point: ")
	h, err := c.nextFloat()
	if err != nil {
		return err
	}
	c.prompt(fmt.Sprintf("Please enter the capacity (max = %d): ", c.maxResults))
	limit, err := c.nextInt()
	if err != nil {
		return err
	}
	if limit > c.maxResults {
		c.println(c.style.failure.Render(fmt.Sprintf("Capacity cannot be greater than %d", c.maxResults)))
		return nil
	}

	c.serviceTypes()
	c.prompt(fmt.Sprintf("Choose service for searching (%s for any): ", anyServiceToken))
	token, err := c.next()
	if err != nil {
		return err
	}
	service := models.AnyService
	if token != anyServiceToken {
		if service, err = parseService(token); err != nil {
			return err
		}
	}

	rng := geo.NewRectangle(x, y, w*2, h*2)
	c.println(c.style.dim.Render(separator))
	c.println(fmt.Sprintf("Searching for %s places within the rectangle: x=%g, y=%g, w=%g, h=%g",
		service, rng.X, rng.Y, rng.Width, rng.Height))

	start := time.Now()
	places := c.tree.Search(rng, service, limit)
	elapsed := time.Since(start)

	c.println("Time taken: " + c.style.stat.Render(elapsed.String()))
	c.println("Number of places found: " + c.style.stat.Render(strconv.Itoa(len(places))))
	for _, p := range places {
		c.println(p.String())
	}
	return nil
}

func (c *Console) edit() error {
	x, y, err := c.coordinates()
	if err != nil {
		return err
	}
	place, ok := c.tree.Find(x, y)
	if !ok {
		c.println(c.style.failure.Render("No place found!"))
		return nil
	}

	c.println(place.String())
	c.println(c.style.dim.Render(separator))
	c.println("1. Add service")
	c.println("2. Remove service")
	c.println(c.style.dim.Render(separator))
	c.prompt("Enter your choice: ")
	choice, err := c.next()
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		c.serviceTypes()
		c.prompt("Choose service you want to add: ")
		service, err := c.nextService()
		if err != nil {
			return err
		}
		return c.applyEdit(x, y, "Added service successfully!", "Failed to add service!",
			func(p *models.Place) bool { return p.AddService(service) })

	case "2":
		own := place.ServiceList()
		for i, s := range own {
			c.println(fmt.Sprintf("%d. %s", i, s))
		}
		c.prompt("Choose service you want to remove: ")
		i, err := c.nextInt()
		if err != nil {
			return err
		}
		if i < 0 || i >= len(own) {
			return fmt.Errorf("%w: %d", models.ErrInvalidIndex, i)
		}
		return c.applyEdit(x, y, "Removed service successfully!", "Failed to remove service!",
			func(p *models.Place) bool { return p.RemoveService(own[i]) })

	default:
		c.println(c.style.failure.Render("Invalid choice"))
	}
	return nil
}

func (c *Console) applyEdit(x, y float64, okMsg, failMsg string, change func(p *models.Place) bool) error {
	changed := false
	err := c.tree.Edit(x, y, func(p *models.Place) error {
		changed = change(p)
		return nil
	})
	if err != nil {
		return err
	}
	if changed {
		c.println(c.style.success.Render(okMsg))
	} else {
		c.println(c.style.failure.Render(failMsg))
	}
	return nil
}

func (c *Console) coordinates() (float64, float64, error) {
	c.prompt("Please enter the x coordinate: ")
	x, err := c.nextFloat()
	if err != nil {
		return 0, 0, err
	}
	c.prompt("Please enter the y coordinate: ")
	y, err := c.nextFloat()
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (c *Console) next() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", io.EOF
	}
	return c.in.Text(), nil
}

func (c *Console) nextFloat() (float64, error) {
	token, err := c.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadNumber, token)
	}
	return v, nil
}

func (c *Console) nextInt() (int, error) {
	token, err := c.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadNumber, token)
	}
	return v, nil
}

func (c *Console) nextService() (models.ServiceType, error) {
	token, err := c.next()
	if err != nil {
		return models.AnyService, err
	}
	return parseService(token)
}

func parseService(token string) (models.ServiceType, error) {
	i, err := strconv.Atoi(token)
	if err != nil {
		return models.AnyService, fmt.Errorf("%w: %q", errBadNumber, token)
	}
	return models.ServiceFromIndex(i)
}

func (c *Console) prompt(s string) {
	fmt.Fprint(c.out, c.style.prompt.Render(s))
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}
