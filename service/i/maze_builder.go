package i

import (
	"context"

	"github.com/beka-birhanu/gem-maze/maze"
)

// MazeRequest describes a fully determined maze: the same request always yields the
// same walls and items.
type MazeRequest struct {
	Width     int
	Height    int
	ItemCount int
	Seed      uint64
}

// MazeBuilder produces populated mazes.
type MazeBuilder interface {
	Maze(ctx context.Context, req MazeRequest) (*maze.Maze, error)
}
