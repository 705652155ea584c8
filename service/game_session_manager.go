package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/beka-birhanu/gem-maze/game"
	"github.com/beka-birhanu/gem-maze/maze"
	"github.com/beka-birhanu/gem-maze/service/i"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("player has no game session")

var _ i.GameSessionManager = &GameSessionManager{}

// GameSessionManager keeps one running game per player.
type GameSessionManager struct {
	sessions    map[uuid.UUID]*game.Game
	mazeFactory game.MazeFactory
	levels      func(int) game.Params
	logger      i.Logger
	sync.RWMutex
}

// Config holds the collaborators of a GameSessionManager.
type Config struct {
	MazeFactory game.MazeFactory
	// Levels overrides game.LevelParams when set.
	Levels func(int) game.Params
	Logger i.Logger
}

func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.MazeFactory == nil {
		return nil, game.ErrNoMazeFactory
	}

	return &GameSessionManager{
		sessions:    make(map[uuid.UUID]*game.Game),
		mazeFactory: c.MazeFactory,
		levels:      c.Levels,
		logger:      c.Logger,
	}, nil
}

// NewSession starts a fresh game for the player. A previous game of the player is stopped.
func (g *GameSessionManager) NewSession(ctx context.Context, playerID uuid.UUID) (game.Snapshot, error) {
	gm, err := game.New(ctx, game.Config{
		MazeFactory: g.mazeFactory,
		Levels:      g.levels,
		OnEnd:       g.levelEnded(playerID),
	})
	if err != nil {
		g.logger.Error(fmt.Sprintf("creating game for player %s: %s", playerID, err))
		return game.Snapshot{}, err
	}

	g.Lock()
	if prev, ok := g.sessions[playerID]; ok {
		prev.Stop()
	}
	g.sessions[playerID] = gm
	g.Unlock()

	g.logger.Info(fmt.Sprintf("started new game for player: %s", playerID))
	return gm.Snapshot(), nil
}

// Snapshot returns the state of the player's game.
func (g *GameSessionManager) Snapshot(playerID uuid.UUID) (game.Snapshot, error) {
	gm, err := g.session(playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	return gm.Snapshot(), nil
}

// Move steps the player's avatar one cell.
func (g *GameSessionManager) Move(playerID uuid.UUID, d maze.Direction) (game.MoveResult, game.Snapshot, error) {
	gm, err := g.session(playerID)
	if err != nil {
		return game.MoveResult{}, game.Snapshot{}, err
	}

	result, err := gm.Move(d)
	if err != nil {
		return game.MoveResult{}, game.Snapshot{}, err
	}
	return result, gm.Snapshot(), nil
}

// NextLevel advances the player's completed level.
func (g *GameSessionManager) NextLevel(ctx context.Context, playerID uuid.UUID) (game.Snapshot, error) {
	gm, err := g.session(playerID)
	if err != nil {
		return game.Snapshot{}, err
	}

	if err := gm.NextLevel(ctx); err != nil {
		return game.Snapshot{}, err
	}
	snap := gm.Snapshot()
	g.logger.Info(fmt.Sprintf("player %s advanced to level %d", playerID, snap.Level))
	return snap, nil
}

// Pause freezes the clock of the player's level.
func (g *GameSessionManager) Pause(playerID uuid.UUID) (game.Snapshot, error) {
	gm, err := g.session(playerID)
	if err != nil {
		return game.Snapshot{}, err
	}

	if err := gm.Pause(); err != nil {
		return game.Snapshot{}, err
	}
	return gm.Snapshot(), nil
}

// Resume continues the player's paused level.
func (g *GameSessionManager) Resume(playerID uuid.UUID) (game.Snapshot, error) {
	gm, err := g.session(playerID)
	if err != nil {
		return game.Snapshot{}, err
	}

	if err := gm.Resume(); err != nil {
		return game.Snapshot{}, err
	}
	return gm.Snapshot(), nil
}

// Restart starts the player's game over from level 1.
func (g *GameSessionManager) Restart(ctx context.Context, playerID uuid.UUID) (game.Snapshot, error) {
	gm, err := g.session(playerID)
	if err != nil {
		return game.Snapshot{}, err
	}

	if err := gm.Restart(ctx); err != nil {
		return game.Snapshot{}, err
	}
	return gm.Snapshot(), nil
}

// End stops and forgets the player's game.
func (g *GameSessionManager) End(playerID uuid.UUID) error {
	g.Lock()
	defer g.Unlock()

	gm, ok := g.sessions[playerID]
	if !ok {
		return ErrNoSession
	}
	gm.Stop()
	delete(g.sessions, playerID)
	g.logger.Info(fmt.Sprintf("ended game for player: %s", playerID))
	return nil
}

// StopAll disarms every running game. Used on shutdown.
func (g *GameSessionManager) StopAll() {
	g.Lock()
	defer g.Unlock()

	for _, gm := range g.sessions {
		gm.Stop()
	}
}

func (g *GameSessionManager) session(playerID uuid.UUID) (*game.Game, error) {
	g.RLock()
	defer g.RUnlock()

	gm, ok := g.sessions[playerID]
	if !ok {
		return nil, ErrNoSession
	}
	return gm, nil
}

func (g *GameSessionManager) levelEnded(playerID uuid.UUID) func(game.Snapshot) {
	return func(s game.Snapshot) {
		g.logger.Info(fmt.Sprintf("player %s level %d ended: %s, score %d, gems %d/%d",
			playerID, s.Level, s.State, s.Score, s.GemsCollected, s.GemsTotal))
	}
}
