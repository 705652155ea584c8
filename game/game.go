/*
Package game runs single-player gem maze levels on top of the maze model.

A Game owns one maze at a time and moves through Playing → LevelComplete | GameOver.
A level in progress can be paused, which freezes its clock until it is resumed.
Movement is grid-stepped and always validated by maze.CanMove. Stepping onto a gem
collects it, reaching the exit completes the level with a bonus of the whole seconds
left, and running out of time ends the game. NextLevel and Restart throw the current
maze away and build a fresh one.
*/
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/gem-maze/maze"
)

// Game-related errors.
var (
	ErrNotPlaying       = errors.New("game is not in progress")
	ErrBlocked          = errors.New("move blocked by a wall or the maze edge")
	ErrLevelNotComplete = errors.New("level is not complete")
	ErrNotPaused        = errors.New("game is not paused")
	ErrNoMazeFactory    = errors.New("maze factory is required")
)

// State is the phase of the current level.
type State int

const (
	Playing State = iota
	LevelComplete
	GameOver
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case LevelComplete:
		return "level_complete"
	case GameOver:
		return "game_over"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MazeFactory builds a populated maze for a level.
type MazeFactory func(ctx context.Context, p Params) (*maze.Maze, error)

// Config holds the collaborators of a Game.
type Config struct {
	MazeFactory MazeFactory
	// Levels maps a level number to its parameters. Defaults to LevelParams.
	Levels func(level int) Params
	// Now defaults to time.Now.
	Now func() time.Time
	// OnEnd, when set, is called with the final snapshot each time a level ends.
	// It runs without the game lock held.
	OnEnd func(Snapshot)
}

// Snapshot is a read-only copy of the game state.
type Snapshot struct {
	Level         int
	State         State
	Score         int
	GemsCollected int
	GemsTotal     int
	Player        maze.CellPosition
	Remaining     time.Duration
	Layout        maze.Layout
}

// MoveResult describes the outcome of a legal move.
type MoveResult struct {
	Player    maze.CellPosition
	Collected *maze.Item
	TimeBonus int
	State     State
}

// Game represents one player's run through successive maze levels.
type Game struct {
	cfg       Config
	maze      *maze.Maze        // Current level maze.
	level     int               // Current level, starting at 1.
	params    Params            // Parameters the current maze was built with.
	state     State             // Phase of the current level.
	score     int               // Score carried across levels.
	collected int               // Gems collected in the current level.
	total     int               // Gems placed in the current level.
	player    maze.CellPosition // Player cell.
	startedAt time.Time         // When the current level started.
	remaining time.Duration     // Time left, frozen once the level ends.
	timer     *time.Timer       // Fires when the level time runs out.
	round     int               // Bumped on every re-arm so stale timers are ignored.
	sync.RWMutex
}

// New creates a Game at level 1 and starts its clock.
func New(ctx context.Context, cfg Config) (*Game, error) {
	if cfg.MazeFactory == nil {
		return nil, ErrNoMazeFactory
	}
	if cfg.Levels == nil {
		cfg.Levels = LevelParams
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	g := &Game{cfg: cfg}
	if err := g.startLevel(ctx, 1); err != nil {
		return nil, err
	}
	return g, nil
}

// startLevel builds the maze for level and resets per-level state. The caller holds
// the lock, or the game is not shared yet.
func (g *Game) startLevel(ctx context.Context, level int) error {
	params := g.cfg.Levels(level)
	m, err := g.cfg.MazeFactory(ctx, params)
	if err != nil {
		return fmt.Errorf("building level %d: %w", level, err)
	}

	g.stopTimer()
	g.maze = m
	g.level = level
	g.params = params
	g.state = Playing
	g.collected = 0
	g.total = m.ItemCount()
	g.player = m.Start()
	g.startedAt = g.cfg.Now()
	g.remaining = params.TimeLimit
	g.armTimer(params.TimeLimit)
	return nil
}

// armTimer starts a new round whose timer fires after d.
func (g *Game) armTimer(d time.Duration) {
	g.round++
	round := g.round
	g.timer = time.AfterFunc(d, func() { g.expire(round) })
}

func (g *Game) stopTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// expire ends the level of the given round if it is still being played.
func (g *Game) expire(round int) {
	g.Lock()
	if g.round != round || g.state != Playing {
		g.Unlock()
		return
	}
	g.finish(GameOver)
	snap := g.snapshot()
	g.Unlock()

	g.notifyEnd(snap)
}

// timeLeft is the unfrozen remaining time of a level in progress.
func (g *Game) timeLeft() time.Duration {
	left := g.params.TimeLimit - g.cfg.Now().Sub(g.startedAt)
	return max(left, 0)
}

// finish freezes the clock and moves to a terminal state.
func (g *Game) finish(s State) {
	g.remaining = g.timeLeft()
	g.state = s
	g.stopTimer()
}

func (g *Game) notifyEnd(snap Snapshot) {
	if g.cfg.OnEnd != nil {
		g.cfg.OnEnd(snap)
	}
}

// Move steps the player one cell in direction d.
func (g *Game) Move(d maze.Direction) (MoveResult, error) {
	g.Lock()

	if g.state == Playing && g.timeLeft() == 0 {
		g.finish(GameOver)
		snap := g.snapshot()
		g.Unlock()
		g.notifyEnd(snap)
		return MoveResult{}, ErrNotPlaying
	}
	if g.state != Playing {
		g.Unlock()
		return MoveResult{}, ErrNotPlaying
	}
	if !g.maze.CanMove(g.player, d) {
		g.Unlock()
		return MoveResult{}, fmt.Errorf("%w: %s from %s", ErrBlocked, d, g.player)
	}

	g.player = g.player.Step(d)
	result := MoveResult{Player: g.player}

	if item, ok := g.maze.RemoveItem(g.player); ok {
		g.score += item.Value
		g.collected++
		result.Collected = &item
	}

	if !g.maze.IsExit(g.player) {
		result.State = g.state
		g.Unlock()
		return result, nil
	}

	g.finish(LevelComplete)
	result.TimeBonus = int(g.remaining / time.Second)
	g.score += result.TimeBonus
	result.State = g.state
	snap := g.snapshot()
	g.Unlock()

	g.notifyEnd(snap)
	return result, nil
}

// NextLevel advances to the next level after the current one was completed.
// The score carries over.
func (g *Game) NextLevel(ctx context.Context) error {
	g.Lock()
	defer g.Unlock()

	if g.state != LevelComplete {
		return ErrLevelNotComplete
	}
	return g.startLevel(ctx, g.level+1)
}

// Restart drops all progress and starts again from level 1.
func (g *Game) Restart(ctx context.Context) error {
	g.Lock()
	defer g.Unlock()

	if err := g.startLevel(ctx, 1); err != nil {
		return err
	}
	g.score = 0
	return nil
}

// Pause freezes the clock of the level in progress.
func (g *Game) Pause() error {
	g.Lock()

	if g.state == Playing && g.timeLeft() == 0 {
		g.finish(GameOver)
		snap := g.snapshot()
		g.Unlock()
		g.notifyEnd(snap)
		return ErrNotPlaying
	}
	if g.state != Playing {
		g.Unlock()
		return ErrNotPlaying
	}

	g.remaining = g.timeLeft()
	g.state = Paused
	g.stopTimer()
	g.round++
	g.Unlock()
	return nil
}

// Resume restarts the clock of a paused level with the time that was left.
func (g *Game) Resume() error {
	g.Lock()
	defer g.Unlock()

	if g.state != Paused {
		return ErrNotPaused
	}

	// Shift the start so timeLeft picks up from the frozen remainder.
	g.startedAt = g.cfg.Now().Add(g.remaining - g.params.TimeLimit)
	g.state = Playing
	g.armTimer(g.remaining)
	return nil
}

// Stop disarms the level timer. The game keeps its current state.
func (g *Game) Stop() {
	g.Lock()
	defer g.Unlock()
	g.stopTimer()
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() Snapshot {
	g.RLock()
	defer g.RUnlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	remaining := g.remaining
	if g.state == Playing {
		remaining = g.timeLeft()
	}

	return Snapshot{
		Level:         g.level,
		State:         g.state,
		Score:         g.score,
		GemsCollected: g.collected,
		GemsTotal:     g.total,
		Player:        g.player,
		Remaining:     remaining,
		Layout:        g.maze.Layout(),
	}
}
