package game

import "github.com/beka-birhanu/gem-maze/maze"

// Encoder serializes maze layouts and game snapshots.
type Encoder interface {
	MarshalLayout(maze.Layout) ([]byte, error)
	UnmarshalLayout([]byte) (maze.Layout, error)
	MarshalSnapshot(Snapshot) ([]byte, error)
}
