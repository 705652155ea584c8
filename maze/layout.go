package maze

import "fmt"

// Layout is a flat, render-ready export of a maze.
type Layout struct {
	Width  int
	Height int
	Seed   uint64
	Walls  []uint8 // row-major wall bitmasks, see Cell.WallMask
	Items  []Item  // row-major
}

// Layout exports the maze's current walls and items.
func (m *Maze) Layout() Layout {
	walls := make([]uint8, 0, m.width*m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			walls = append(walls, m.grid[y][x].WallMask())
		}
	}

	return Layout{
		Width:  m.width,
		Height: m.height,
		Seed:   m.seed,
		Walls:  walls,
		Items:  m.Items(),
	}
}

// FromLayout rebuilds a maze from an exported layout. The wall set must be paired and
// closed along the border, and items must sit on distinct in-bound cells other than the
// start and exit. Item values are recomputed from their rarity.
//
// The restored maze draws further randomness from a fresh stream for its seed.
func FromLayout(l Layout) (*Maze, error) {
	if l.Width <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, l.Width, l.Height)
	}
	if l.Width > len(l.Walls)/l.Height || len(l.Walls) != l.Width*l.Height {
		return nil, fmt.Errorf("%w: %d wall masks for %d cells", ErrInvalidLayout, len(l.Walls), l.Width*l.Height)
	}

	m := newClosedMaze(l.Width, l.Height)
	m.seed = l.Seed
	m.rng = NewRand(l.Seed)
	for i, mask := range l.Walls {
		m.grid[i/l.Width][i%l.Width] = cellFromMask(mask)
	}

	if err := m.checkWalls(); err != nil {
		return nil, err
	}

	for _, item := range l.Items {
		switch {
		case !m.InBound(item.Pos):
			return nil, fmt.Errorf("%w: item at %s", ErrOutOfBounds, item.Pos)
		case item.Pos == m.Start() || m.IsExit(item.Pos):
			return nil, fmt.Errorf("%w: item on start or exit %s", ErrInvalidLayout, item.Pos)
		case !item.Rarity.Valid():
			return nil, fmt.Errorf("%w: unknown rarity at %s", ErrInvalidLayout, item.Pos)
		}
		if _, dup := m.items[item.Pos]; dup {
			return nil, fmt.Errorf("%w: two items at %s", ErrInvalidLayout, item.Pos)
		}
		m.items[item.Pos] = newItem(item.Pos, item.Rarity)
	}

	return m, nil
}

// checkWalls verifies wall pairing between neighbors and closed outer walls.
func (m *Maze) checkWalls() error {
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			pos := CellPosition{X: x, Y: y}
			for _, d := range Directions {
				next := pos.Step(d)
				if !m.InBound(next) {
					if !m.cell(pos).Walls[d] {
						return fmt.Errorf("%w: open border at %s %s", ErrInconsistentWalls, pos, d)
					}
					continue
				}
				if m.cell(pos).Walls[d] != m.cell(next).Walls[d.Opposite()] {
					return fmt.Errorf("%w: unpaired wall at %s %s", ErrInconsistentWalls, pos, d)
				}
			}
		}
	}
	return nil
}
