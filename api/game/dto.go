// Package gameapi exposes maze generation and single-player game sessions over HTTP.
package gameapi

import (
	"github.com/beka-birhanu/gem-maze/game"
	"github.com/beka-birhanu/gem-maze/maze"
)

// MazeRequest asks for a populated maze. A missing seed is drawn at random.
type MazeRequest struct {
	Width  int     `json:"width" binding:"required,min=1,max=200"`
	Height int     `json:"height" binding:"required,min=1,max=200"`
	Items  int     `json:"items" binding:"min=0"`
	Seed   *uint64 `json:"seed"`
}

// MoveRequest names the direction of a single step.
type MoveRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// Position is a cell coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ItemResponse is a gem on the board.
type ItemResponse struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Rarity string `json:"rarity"`
	Value  int    `json:"value"`
}

// MazeResponse describes a maze. Cells are indexed [y][x] and hold wall bit masks:
// bit 0 north, bit 1 east, bit 2 south, bit 3 west.
type MazeResponse struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Seed   uint64         `json:"seed"`
	Start  Position       `json:"start"`
	Exit   Position       `json:"exit"`
	Cells  [][]int        `json:"cells"`
	Items  []ItemResponse `json:"items"`
}

// SnapshotResponse is the state of a game.
type SnapshotResponse struct {
	Level         int          `json:"level"`
	State         string       `json:"state"`
	Score         int          `json:"score"`
	GemsCollected int          `json:"gems_collected"`
	GemsTotal     int          `json:"gems_total"`
	Player        Position     `json:"player"`
	RemainingMs   int64        `json:"remaining_ms"`
	Maze          MazeResponse `json:"maze"`
}

// MoveResponse is the outcome of a move and the resulting game state.
type MoveResponse struct {
	Player    Position         `json:"player"`
	Collected *ItemResponse    `json:"collected,omitempty"`
	TimeBonus int              `json:"time_bonus"`
	State     string           `json:"state"`
	Game      SnapshotResponse `json:"game"`
}

func toPosition(p maze.CellPosition) Position {
	return Position{X: p.X, Y: p.Y}
}

func toItemResponse(item maze.Item) ItemResponse {
	return ItemResponse{
		X:      item.Pos.X,
		Y:      item.Pos.Y,
		Rarity: item.Rarity.String(),
		Value:  item.Value,
	}
}

func toMazeResponse(l maze.Layout) MazeResponse {
	cells := make([][]int, l.Height)
	for y := range cells {
		row := make([]int, l.Width)
		for x := range row {
			row[x] = int(l.Walls[y*l.Width+x])
		}
		cells[y] = row
	}

	items := make([]ItemResponse, 0, len(l.Items))
	for _, item := range l.Items {
		items = append(items, toItemResponse(item))
	}

	return MazeResponse{
		Width:  l.Width,
		Height: l.Height,
		Seed:   l.Seed,
		Start:  Position{X: 0, Y: 0},
		Exit:   Position{X: l.Width - 1, Y: l.Height - 1},
		Cells:  cells,
		Items:  items,
	}
}

func toSnapshotResponse(s game.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		Level:         s.Level,
		State:         s.State.String(),
		Score:         s.Score,
		GemsCollected: s.GemsCollected,
		GemsTotal:     s.GemsTotal,
		Player:        toPosition(s.Player),
		RemainingMs:   s.Remaining.Milliseconds(),
		Maze:          toMazeResponse(s.Layout),
	}
}

func toMoveResponse(r game.MoveResult, s game.Snapshot) MoveResponse {
	resp := MoveResponse{
		Player:    toPosition(r.Player),
		TimeBonus: r.TimeBonus,
		State:     r.State.String(),
		Game:      toSnapshotResponse(s),
	}
	if r.Collected != nil {
		collected := toItemResponse(*r.Collected)
		resp.Collected = &collected
	}
	return resp
}
