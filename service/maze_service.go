package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/beka-birhanu/gem-maze/game"
	"github.com/beka-birhanu/gem-maze/maze"
	"github.com/beka-birhanu/gem-maze/service/i"
)

const mazeKeyFormat = "gem-maze:maze:%dx%d:items_%d:seed_%d"

var _ i.MazeBuilder = &MazeService{}

// MazeService builds populated mazes, keeping encoded layouts in a shared cache so
// the same request is generated once.
type MazeService struct {
	cache   i.MazeCache
	encoder game.Encoder
	logger  i.Logger
	seed    func() uint64
}

// MazeServiceConfig holds the collaborators of a MazeService. Cache may be nil.
type MazeServiceConfig struct {
	Cache   i.MazeCache
	Encoder game.Encoder
	Logger  i.Logger
	// Seed draws level seeds for LevelFactory. Defaults to rand.Uint64.
	Seed func() uint64
}

// NewMazeService creates a MazeService.
func NewMazeService(c *MazeServiceConfig) *MazeService {
	seed := c.Seed
	if seed == nil {
		seed = rand.Uint64
	}
	return &MazeService{
		cache:   c.Cache,
		encoder: c.Encoder,
		logger:  c.Logger,
		seed:    seed,
	}
}

// Maze returns the maze described by req, from the cache when possible.
func (s *MazeService) Maze(ctx context.Context, req i.MazeRequest) (*maze.Maze, error) {
	if s.cache == nil {
		return s.build(ctx, req)
	}

	key := mazeKey(req)
	if m, ok := s.cached(ctx, key); ok {
		return m, nil
	}

	unlock, err := s.cache.Lock(ctx, key)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("locking %s: %s", key, err))
	} else {
		defer unlock()
		if m, ok := s.cached(ctx, key); ok {
			return m, nil
		}
	}

	m, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, m)
	return m, nil
}

// LevelFactory returns a game maze factory drawing a fresh seed for every level.
// Level mazes are never requested twice, so they bypass the cache.
func (s *MazeService) LevelFactory() game.MazeFactory {
	return func(ctx context.Context, p game.Params) (*maze.Maze, error) {
		return s.build(ctx, i.MazeRequest{
			Width:     p.Width,
			Height:    p.Height,
			ItemCount: p.ItemCount,
			Seed:      s.seed(),
		})
	}
}

func (s *MazeService) build(ctx context.Context, req i.MazeRequest) (*maze.Maze, error) {
	m, err := maze.Generate(ctx, req.Width, req.Height, maze.WithSeed(req.Seed))
	if err != nil {
		return nil, err
	}
	if _, err := m.PlaceItems(req.ItemCount, nil, maze.DefaultRarityWeights); err != nil {
		return nil, err
	}
	return m, nil
}

// cached loads and decodes key. Any failure counts as a miss.
func (s *MazeService) cached(ctx context.Context, key string) (*maze.Maze, bool) {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("reading %s from cache: %s", key, err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	layout, err := s.encoder.UnmarshalLayout(payload)
	if err != nil {
		s.logger.Error(fmt.Sprintf("decoding cached %s: %s", key, err))
		return nil, false
	}
	m, err := maze.FromLayout(layout)
	if err != nil {
		s.logger.Error(fmt.Sprintf("restoring cached %s: %s", key, err))
		return nil, false
	}
	return m, true
}

func (s *MazeService) store(ctx context.Context, key string, m *maze.Maze) {
	payload, err := s.encoder.MarshalLayout(m.Layout())
	if err != nil {
		s.logger.Error(fmt.Sprintf("encoding %s: %s", key, err))
		return
	}
	if err := s.cache.Set(ctx, key, payload); err != nil {
		s.logger.Warning(fmt.Sprintf("writing %s to cache: %s", key, err))
	}
}

func mazeKey(req i.MazeRequest) string {
	return fmt.Sprintf(mazeKeyFormat, req.Width, req.Height, req.ItemCount, req.Seed)
}
