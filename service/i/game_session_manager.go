package i

import (
	"context"

	"github.com/beka-birhanu/gem-maze/game"
	"github.com/beka-birhanu/gem-maze/maze"
	"github.com/google/uuid"
)

// GameSessionManager keeps one running game per player.
type GameSessionManager interface {
	// NewSession starts a fresh game for the player, replacing any previous one.
	NewSession(ctx context.Context, playerID uuid.UUID) (game.Snapshot, error)

	// Snapshot returns the state of the player's game.
	Snapshot(playerID uuid.UUID) (game.Snapshot, error)

	// Move steps the player's avatar one cell.
	Move(playerID uuid.UUID, d maze.Direction) (game.MoveResult, game.Snapshot, error)

	// NextLevel advances a completed level.
	NextLevel(ctx context.Context, playerID uuid.UUID) (game.Snapshot, error)

	// Pause freezes the clock of the player's level.
	Pause(playerID uuid.UUID) (game.Snapshot, error)

	// Resume continues a paused level.
	Resume(playerID uuid.UUID) (game.Snapshot, error)

	// Restart starts the player's game over from level 1.
	Restart(ctx context.Context, playerID uuid.UUID) (game.Snapshot, error)

	// End stops and forgets the player's game.
	End(playerID uuid.UUID) error
}
