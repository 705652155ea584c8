package i

import "context"

// MazeCache stores encoded maze layouts by key.
type MazeCache interface {
	// Get returns the cached payload and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores payload under key.
	Set(ctx context.Context, key string, payload []byte) error

	// Lock takes an exclusive lock on key. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}
