package maze

import (
	"fmt"
	"slices"
)

// Rarity is the tier of a gem. Tiers are ordered from most to least common.
type Rarity int

const (
	Common Rarity = iota
	Rare
	Epic
	Legendary
)

// Rarities lists every tier in weight order.
var Rarities = [4]Rarity{Common, Rare, Epic, Legendary}

var (
	rarityNames  = [4]string{"Common", "Rare", "Epic", "Legendary"}
	rarityValues = [4]int{1, 5, 20, 100}
)

// Valid reports whether r is a known tier.
func (r Rarity) Valid() bool {
	return r >= Common && r <= Legendary
}

// Value returns the points a gem of this tier is worth.
func (r Rarity) Value() int {
	if !r.Valid() {
		return 0
	}
	return rarityValues[r]
}

func (r Rarity) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rarity(%d)", int(r))
	}
	return rarityNames[r]
}

// RarityWeights holds the relative draw weight of each tier, indexed by Rarity.
type RarityWeights [4]float64

// DefaultRarityWeights is the standard gem distribution.
var DefaultRarityWeights = RarityWeights{0.70, 0.20, 0.08, 0.02}

func (w RarityWeights) validate() (float64, error) {
	var total float64
	for _, weight := range w {
		if weight < 0 {
			return 0, fmt.Errorf("%w: negative weight %v", ErrInvalidRarityWeights, weight)
		}
		total += weight
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: weights sum to zero", ErrInvalidRarityWeights)
	}
	return total, nil
}

// draw picks a tier with probability proportional to its weight.
func (w RarityWeights) draw(rng Rand, total float64) Rarity {
	r := rng.Float64() * total
	var cumulative float64
	last := Common
	for _, rarity := range Rarities {
		if w[rarity] == 0 {
			continue
		}
		last = rarity
		cumulative += w[rarity]
		if r < cumulative {
			return rarity
		}
	}
	// Rounding may leave r at the very top of the range.
	return last
}

// Item is a collectible gem sitting on a cell.
type Item struct {
	Pos    CellPosition
	Rarity Rarity
	Value  int
}

func newItem(pos CellPosition, r Rarity) Item {
	return Item{Pos: pos, Rarity: r, Value: r.Value()}
}

// PlaceItems selects count distinct cells uniformly at random and puts a gem on each.
// The start and exit cells are always excluded along with any cell in excluded.
// Cells are sampled without replacement, so the call fails with ErrInsufficientSpace
// instead of searching forever when there is not enough room.
//
// On success the maze's item index is replaced with the returned items. On error it
// is left untouched.
func (m *Maze) PlaceItems(count int, excluded []CellPosition, weights RarityWeights) ([]Item, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidItemCount, count)
	}
	total, err := weights.validate()
	if err != nil {
		return nil, err
	}

	skip := map[CellPosition]struct{}{
		m.Start(): {},
		m.Exit():  {},
	}
	for _, pos := range excluded {
		if !m.InBound(pos) {
			return nil, fmt.Errorf("%w: excluded %s", ErrOutOfBounds, pos)
		}
		skip[pos] = struct{}{}
	}

	eligible := make([]CellPosition, 0, m.width*m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			pos := CellPosition{X: x, Y: y}
			if _, ok := skip[pos]; !ok {
				eligible = append(eligible, pos)
			}
		}
	}

	if count > len(eligible) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrInsufficientSpace, count, len(eligible))
	}

	// Partial Fisher-Yates: the first count slots end up as a uniform sample.
	for i := 0; i < count; i++ {
		j := i + m.rng.IntN(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}

	placed := make([]Item, 0, count)
	index := make(map[CellPosition]Item, count)
	for _, pos := range eligible[:count] {
		item := newItem(pos, weights.draw(m.rng, total))
		placed = append(placed, item)
		index[pos] = item
	}

	m.items = index
	return placed, nil
}

// ItemAt returns the item on pos, if any.
func (m *Maze) ItemAt(pos CellPosition) (Item, bool) {
	item, ok := m.items[pos]
	return item, ok
}

// RemoveItem takes the item off pos and returns it. It is a no-op when pos holds
// no item or lies off grid.
func (m *Maze) RemoveItem(pos CellPosition) (Item, bool) {
	item, ok := m.items[pos]
	if ok {
		delete(m.items, pos)
	}
	return item, ok
}

// ItemCount returns the number of items still in the maze.
func (m *Maze) ItemCount() int {
	return len(m.items)
}

// Items returns the remaining items in row-major order.
func (m *Maze) Items() []Item {
	items := make([]Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b Item) int {
		if a.Pos.Y != b.Pos.Y {
			return a.Pos.Y - b.Pos.Y
		}
		return a.Pos.X - b.Pos.X
	})
	return items
}
