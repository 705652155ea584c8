package maze

import (
	"fmt"
	"strings"
)

// Direction is one of the four cardinal sides of a cell.
// The numeric order (North, East, South, West) is also the wall order of a Cell
// and the order in which neighbors are inspected during generation.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists every direction in wall order.
var Directions = [4]Direction{North, East, South, West}

var directionNames = [4]string{"North", "East", "South", "West"}

// deltas holds the (dx, dy) step for each direction. North is y-1.
var deltas = [4]CellPosition{
	North: {X: 0, Y: -1},
	East:  {X: 1, Y: 0},
	South: {X: 0, Y: 1},
	West:  {X: -1, Y: 0},
}

// Valid reports whether d is one of the four cardinal directions.
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

// Opposite returns the direction facing back across the same wall.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection converts a direction name ("north", "East", ...) or its initial
// letter into a Direction.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Directions {
		name := strings.ToLower(directionNames[d])
		if s == name || s == name[:1] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// CellPosition represents the position of a cell in the maze grid.
type CellPosition struct {
	X int // Column index of the cell
	Y int // Row index of the cell
}

// Step returns the position adjacent to p in direction d. The result may be off grid.
func (p CellPosition) Step(d Direction) CellPosition {
	delta := deltas[d]
	return CellPosition{X: p.X + delta.X, Y: p.Y + delta.Y}
}

func (p CellPosition) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Cell represents a single cell in a maze grid.
type Cell struct {
	// Visited is a generation-time marker. It carries no meaning once generation is done.
	Visited bool
	// Walls holds the presence of a wall on each side, indexed by Direction.
	Walls [4]bool
}

// newClosedCell returns a cell with all four walls present.
func newClosedCell() *Cell {
	return &Cell{Walls: [4]bool{true, true, true, true}}
}

// HasWall reports whether the wall on side d is present.
func (c *Cell) HasWall(d Direction) bool {
	return c.Walls[d]
}

// WallMask returns the walls as a bitmask where bit d is set when wall d is present.
func (c *Cell) WallMask() uint8 {
	var mask uint8
	for _, d := range Directions {
		if c.Walls[d] {
			mask |= 1 << d
		}
	}
	return mask
}

// cellFromMask builds an unvisited cell from a wall bitmask.
func cellFromMask(mask uint8) *Cell {
	c := &Cell{}
	for _, d := range Directions {
		c.Walls[d] = mask&(1<<d) != 0
	}
	return c
}
