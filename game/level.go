package game

import "time"

const (
	baseDimension = 10
	baseItemCount = 5
	baseTimeLimit = 120 * time.Second
	levelTimeStep = 10 * time.Second
)

// Params are the generation and timing parameters of one level.
type Params struct {
	Width     int
	Height    int
	ItemCount int
	TimeLimit time.Duration
}

// LevelParams scales the maze, the gem count and the time limit with the level number.
// Levels below 1 are treated as level 1.
func LevelParams(level int) Params {
	level = max(level, 1)

	timeLimit := baseTimeLimit
	if level > 1 {
		timeLimit += time.Duration(level) * levelTimeStep
	}

	return Params{
		Width:     baseDimension + level/2,
		Height:    baseDimension + level/2,
		ItemCount: baseItemCount + level,
		TimeLimit: timeLimit,
	}
}
