/*
Package maze provides tools for creating and querying rectangular gem mazes.

A Maze is a grid of Cell values whose walls are carved by a randomized depth-first
backtracker starting at (0,0). Every generated maze is perfect: the open passages form a
spanning tree over all cells, so exactly one path joins any two cells.

After generation, collectible items (gems) are placed with PlaceItems and looked up or
collected by cell. CanMove is the single authority for grid-stepped movement legality.
The exit is always the corner opposite the start.
*/
package maze

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// cancelCheckInterval is how many carving steps run between context checks.
const cancelCheckInterval = 256

var (
	ErrInvalidDimensions    = errors.New("invalid maze dimensions")
	ErrInsufficientSpace    = errors.New("not enough eligible cells for items")
	ErrOutOfBounds          = errors.New("cell is out of the maze")
	ErrCancelled            = errors.New("maze generation cancelled")
	ErrInvalidItemCount     = errors.New("item count must not be negative")
	ErrInvalidRarityWeights = errors.New("invalid rarity weights")
	ErrInconsistentWalls    = errors.New("inconsistent wall layout")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrInvalidLayout        = errors.New("invalid maze layout")
)

// Rand is the random stream a maze draws from. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Option configures Generate.
type Option func(*options)

type options struct {
	seed    uint64
	hasSeed bool
	rng     Rand
}

// WithSeed makes generation and later item placement deterministic for the given seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

// WithRand supplies the random stream directly. It takes precedence over WithSeed.
func WithRand(r Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// NewRand returns the PCG stream used for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Maze represents a rectangular maze of cells with an item index and an exit.
type Maze struct {
	width  int
	height int
	grid   [][]*Cell // grid[y][x]
	seed   uint64
	rng    Rand
	items  map[CellPosition]Item
}

// Generate builds a width x height maze and carves it with randomized depth-first
// backtracking from (0,0). Neighbors are inspected in N, E, S, W order and the next
// cell is chosen uniformly among the unvisited ones.
func Generate(ctx context.Context, width, height int, opts ...Option) (*Maze, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasSeed {
		o.seed = rand.Uint64()
	}
	if o.rng == nil {
		o.rng = NewRand(o.seed)
	}

	m := newClosedMaze(width, height)
	m.seed = o.seed
	m.rng = o.rng

	if err := m.carve(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// newClosedMaze allocates a grid where every wall is present.
func newClosedMaze(width, height int) *Maze {
	grid := make([][]*Cell, height)
	for y := range grid {
		grid[y] = make([]*Cell, width)
		for x := range grid[y] {
			grid[y][x] = newClosedCell()
		}
	}

	return &Maze{
		width:  width,
		height: height,
		grid:   grid,
		items:  make(map[CellPosition]Item),
	}
}

// carve runs the backtracker. Every cell is pushed exactly once, so it terminates.
func (m *Maze) carve(ctx context.Context) error {
	start := m.Start()
	m.cell(start).Visited = true
	stack := []CellPosition{start}

	for steps := 0; len(stack) > 0; steps++ {
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrCancelled, err)
			}
		}

		current := stack[len(stack)-1]
		unvisited := m.unvisitedNeighbors(current)
		if len(unvisited) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := unvisited[m.rng.IntN(len(unvisited))]
		next := current.Step(d)
		m.openWall(current, d)
		m.cell(next).Visited = true
		stack = append(stack, next)
	}

	return nil
}

// unvisitedNeighbors returns, in wall order, the directions from pos that lead to an
// in-bounds cell not yet visited.
func (m *Maze) unvisitedNeighbors(pos CellPosition) []Direction {
	result := make([]Direction, 0, len(Directions))
	for _, d := range Directions {
		next := pos.Step(d)
		if m.InBound(next) && !m.cell(next).Visited {
			result = append(result, d)
		}
	}
	return result
}

// openWall removes the wall between pos and its neighbor in direction d, on both sides.
func (m *Maze) openWall(pos CellPosition, d Direction) {
	m.cell(pos).Walls[d] = false
	m.cell(pos.Step(d)).Walls[d.Opposite()] = false
}

// cell returns the live cell at pos. pos must be in bounds.
func (m *Maze) cell(pos CellPosition) *Cell {
	return m.grid[pos.Y][pos.X]
}

// Width returns the number of columns.
func (m *Maze) Width() int { return m.width }

// Height returns the number of rows.
func (m *Maze) Height() int { return m.height }

// Seed returns the seed the maze was generated from.
func (m *Maze) Seed() uint64 { return m.seed }

// Start returns the generation start and player spawn cell.
func (m *Maze) Start() CellPosition { return CellPosition{X: 0, Y: 0} }

// Exit returns the exit cell, the corner opposite the start.
func (m *Maze) Exit() CellPosition { return CellPosition{X: m.width - 1, Y: m.height - 1} }

// InBound checks if pos lies inside the grid.
func (m *Maze) InBound(pos CellPosition) bool {
	return pos.X >= 0 && pos.X < m.width && pos.Y >= 0 && pos.Y < m.height
}

// Cell returns a copy of the cell at pos.
func (m *Maze) Cell(pos CellPosition) (Cell, error) {
	if !m.InBound(pos) {
		return Cell{}, fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	return *m.cell(pos), nil
}

// CanMove reports whether a single step from `from` in direction d is legal: both cells
// lie inside the grid and no wall separates them.
func (m *Maze) CanMove(from CellPosition, d Direction) bool {
	if !d.Valid() || !m.InBound(from) || !m.InBound(from.Step(d)) {
		return false
	}
	return !m.cell(from).Walls[d]
}

// IsExit reports whether pos is the exit cell.
func (m *Maze) IsExit(pos CellPosition) bool {
	return pos == m.Exit()
}

// String provides a textual representation of the maze.
// S marks the start, E the exit, and items show their rarity initial.
func (m *Maze) String() string {
	var output strings.Builder

	// Top boundary
	output.WriteString("+" + strings.Repeat("---+", m.width) + "\n")

	for y := 0; y < m.height; y++ {
		cellRow := "|"
		for x := 0; x < m.width; x++ {
			pos := CellPosition{X: x, Y: y}
			cellRow += " " + m.glyph(pos) + " "
			if m.cell(pos).Walls[East] {
				cellRow += "|"
			} else {
				cellRow += " "
			}
		}
		output.WriteString(cellRow + "\n")

		wallRow := "+"
		for x := 0; x < m.width; x++ {
			if m.cell(CellPosition{X: x, Y: y}).Walls[South] {
				wallRow += "---+"
			} else {
				wallRow += "   +"
			}
		}
		output.WriteString(wallRow + "\n")
	}

	return output.String()
}

func (m *Maze) glyph(pos CellPosition) string {
	switch {
	case pos == m.Start():
		return "S"
	case m.IsExit(pos):
		return "E"
	}
	if item, ok := m.items[pos]; ok {
		return item.Rarity.String()[:1]
	}
	return " "
}
