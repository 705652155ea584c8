package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/gem-maze/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
	sync.Mutex
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.Lock()
	defer c.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.Lock()
	defer c.Unlock()
	c.now = c.now.Add(d)
}

// seededFactory builds mazes deterministically and records the params it was asked for.
type seededFactory struct {
	seed  uint64
	calls []Params
}

func (f *seededFactory) build(ctx context.Context, p Params) (*maze.Maze, error) {
	f.calls = append(f.calls, p)
	m, err := maze.Generate(ctx, p.Width, p.Height, maze.WithSeed(f.seed+uint64(len(f.calls))))
	if err != nil {
		return nil, err
	}
	if _, err := m.PlaceItems(p.ItemCount, nil, maze.DefaultRarityWeights); err != nil {
		return nil, err
	}
	return m, nil
}

// pathToExit returns the directions of the unique path from start to exit.
func pathToExit(t *testing.T, l maze.Layout) []maze.Direction {
	t.Helper()
	m, err := maze.FromLayout(l)
	require.NoError(t, err)

	type step struct {
		from maze.CellPosition
		dir  maze.Direction
	}
	parent := map[maze.CellPosition]step{}
	seen := map[maze.CellPosition]bool{m.Start(): true}
	queue := []maze.CellPosition{m.Start()}
	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		for _, d := range maze.Directions {
			next := pos.Step(d)
			if !m.CanMove(pos, d) || seen[next] {
				continue
			}
			seen[next] = true
			parent[next] = step{from: pos, dir: d}
			queue = append(queue, next)
		}
	}

	var path []maze.Direction
	for pos := m.Exit(); pos != m.Start(); pos = parent[pos].from {
		path = append([]maze.Direction{parent[pos].dir}, path...)
	}
	return path
}

func newTestGame(t *testing.T, clock *fakeClock, onEnd func(Snapshot)) (*Game, *seededFactory) {
	t.Helper()
	factory := &seededFactory{seed: 100}
	g, err := New(context.Background(), Config{
		MazeFactory: factory.build,
		Now:         clock.Now,
		OnEnd:       onEnd,
	})
	require.NoError(t, err)
	t.Cleanup(g.Stop)
	return g, factory
}

func TestLevelParams(t *testing.T) {
	tests := []struct {
		level int
		want  Params
	}{
		{0, Params{Width: 10, Height: 10, ItemCount: 6, TimeLimit: 120 * time.Second}},
		{1, Params{Width: 10, Height: 10, ItemCount: 6, TimeLimit: 120 * time.Second}},
		{2, Params{Width: 11, Height: 11, ItemCount: 7, TimeLimit: 140 * time.Second}},
		{5, Params{Width: 12, Height: 12, ItemCount: 10, TimeLimit: 170 * time.Second}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelParams(tt.level), "level %d", tt.level)
	}
}

func TestNewRequiresFactory(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNoMazeFactory)
}

func TestNewPropagatesFactoryError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(context.Background(), Config{
		MazeFactory: func(context.Context, Params) (*maze.Maze, error) { return nil, boom },
	})
	assert.ErrorIs(t, err, boom)
}

func TestNewGameStartsAtLevelOne(t *testing.T) {
	g, factory := newTestGame(t, newFakeClock(), nil)

	snap := g.Snapshot()
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, maze.CellPosition{}, snap.Player)
	assert.Equal(t, 6, snap.GemsTotal)
	assert.Equal(t, 120*time.Second, snap.Remaining)
	assert.Equal(t, []Params{LevelParams(1)}, factory.calls)
}

func TestMoveBlockedLeavesStateUnchanged(t *testing.T) {
	g, _ := newTestGame(t, newFakeClock(), nil)
	before := g.Snapshot()

	_, err := g.Move(maze.North)
	assert.ErrorIs(t, err, ErrBlocked)
	_, err = g.Move(maze.West)
	assert.ErrorIs(t, err, ErrBlocked)

	assert.Equal(t, before, g.Snapshot())
}

func TestMoveToExitCompletesLevel(t *testing.T) {
	clock := newFakeClock()
	var ended []Snapshot
	g, _ := newTestGame(t, clock, func(s Snapshot) { ended = append(ended, s) })

	start := g.Snapshot()
	gems := map[maze.CellPosition]maze.Item{}
	for _, item := range start.Layout.Items {
		gems[item.Pos] = item
	}

	clock.Advance(30 * time.Second)

	expectedScore := 0
	expectedCollected := 0
	path := pathToExit(t, start.Layout)
	var last MoveResult
	for _, d := range path {
		res, err := g.Move(d)
		require.NoError(t, err)
		if item, ok := gems[res.Player]; ok {
			require.NotNil(t, res.Collected)
			assert.Equal(t, item, *res.Collected)
			expectedScore += item.Value
			expectedCollected++
		} else {
			assert.Nil(t, res.Collected)
		}
		last = res
	}

	assert.Equal(t, LevelComplete, last.State)
	assert.Equal(t, 90, last.TimeBonus)

	snap := g.Snapshot()
	assert.Equal(t, LevelComplete, snap.State)
	assert.Equal(t, expectedScore+90, snap.Score)
	assert.Equal(t, expectedCollected, snap.GemsCollected)
	assert.Equal(t, 90*time.Second, snap.Remaining)
	require.Len(t, ended, 1)
	assert.Equal(t, snap, ended[0])

	// The clock is frozen once the level ends.
	clock.Advance(time.Hour)
	assert.Equal(t, 90*time.Second, g.Snapshot().Remaining)

	_, err := g.Move(path[0].Opposite())
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestNextLevel(t *testing.T) {
	clock := newFakeClock()
	g, factory := newTestGame(t, clock, nil)

	assert.ErrorIs(t, g.NextLevel(context.Background()), ErrLevelNotComplete)

	for _, d := range pathToExit(t, g.Snapshot().Layout) {
		_, err := g.Move(d)
		require.NoError(t, err)
	}
	score := g.Snapshot().Score
	require.Positive(t, score)

	require.NoError(t, g.NextLevel(context.Background()))
	snap := g.Snapshot()
	assert.Equal(t, 2, snap.Level)
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, score, snap.Score)
	assert.Equal(t, 0, snap.GemsCollected)
	assert.Equal(t, 7, snap.GemsTotal)
	assert.Equal(t, 11, snap.Layout.Width)
	assert.Equal(t, maze.CellPosition{}, snap.Player)
	assert.Equal(t, 140*time.Second, snap.Remaining)
	assert.Equal(t, []Params{LevelParams(1), LevelParams(2)}, factory.calls)
}

func TestTimeRunsOutOnMove(t *testing.T) {
	clock := newFakeClock()
	var ended []Snapshot
	g, _ := newTestGame(t, clock, func(s Snapshot) { ended = append(ended, s) })

	clock.Advance(121 * time.Second)
	_, err := g.Move(pathToExit(t, g.Snapshot().Layout)[0])
	assert.ErrorIs(t, err, ErrNotPlaying)

	snap := g.Snapshot()
	assert.Equal(t, GameOver, snap.State)
	assert.Equal(t, time.Duration(0), snap.Remaining)
	require.Len(t, ended, 1)
	assert.Equal(t, GameOver, ended[0].State)

	assert.ErrorIs(t, g.NextLevel(context.Background()), ErrLevelNotComplete)
}

func TestTimerEndsGame(t *testing.T) {
	factory := &seededFactory{seed: 7}
	ended := make(chan Snapshot, 1)
	g, err := New(context.Background(), Config{
		MazeFactory: factory.build,
		Levels: func(level int) Params {
			p := LevelParams(level)
			p.TimeLimit = 20 * time.Millisecond
			return p
		},
		OnEnd: func(s Snapshot) { ended <- s },
	})
	require.NoError(t, err)
	t.Cleanup(g.Stop)

	select {
	case snap := <-ended:
		assert.Equal(t, GameOver, snap.State)
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not end the game")
	}
	assert.Equal(t, GameOver, g.Snapshot().State)
}

func TestRestart(t *testing.T) {
	clock := newFakeClock()
	g, factory := newTestGame(t, clock, nil)

	for _, d := range pathToExit(t, g.Snapshot().Layout) {
		_, err := g.Move(d)
		require.NoError(t, err)
	}
	require.NoError(t, g.NextLevel(context.Background()))
	require.NoError(t, g.Restart(context.Background()))

	snap := g.Snapshot()
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, Playing, snap.State)
	assert.Len(t, factory.calls, 3)
}

func TestRestartKeepsStateWhenFactoryFails(t *testing.T) {
	clock := newFakeClock()
	fail := false
	factory := &seededFactory{seed: 3}
	g, err := New(context.Background(), Config{
		MazeFactory: func(ctx context.Context, p Params) (*maze.Maze, error) {
			if fail {
				return nil, errors.New("no maze")
			}
			return factory.build(ctx, p)
		},
		Now: clock.Now,
	})
	require.NoError(t, err)
	t.Cleanup(g.Stop)

	before := g.Snapshot()
	fail = true
	assert.Error(t, g.Restart(context.Background()))
	assert.Equal(t, before, g.Snapshot())
}

func TestPauseFreezesClock(t *testing.T) {
	clock := newFakeClock()
	g, _ := newTestGame(t, clock, nil)
	path := pathToExit(t, g.Snapshot().Layout)

	clock.Advance(30 * time.Second)
	require.NoError(t, g.Pause())

	snap := g.Snapshot()
	assert.Equal(t, Paused, snap.State)
	assert.Equal(t, 90*time.Second, snap.Remaining)

	clock.Advance(time.Hour)
	assert.Equal(t, 90*time.Second, g.Snapshot().Remaining)

	_, err := g.Move(path[0])
	assert.ErrorIs(t, err, ErrNotPlaying)
	assert.Equal(t, maze.CellPosition{}, g.Snapshot().Player)
	assert.ErrorIs(t, g.Pause(), ErrNotPlaying)

	require.NoError(t, g.Resume())
	assert.ErrorIs(t, g.Resume(), ErrNotPaused)
	assert.Equal(t, Playing, g.Snapshot().State)
	assert.Equal(t, 90*time.Second, g.Snapshot().Remaining)

	clock.Advance(10 * time.Second)
	var last MoveResult
	for _, d := range path {
		last, err = g.Move(d)
		require.NoError(t, err)
	}
	assert.Equal(t, LevelComplete, last.State)
	assert.Equal(t, 80, last.TimeBonus)
}

func TestPauseAfterTimeRanOut(t *testing.T) {
	clock := newFakeClock()
	g, _ := newTestGame(t, clock, nil)

	clock.Advance(2 * time.Minute)
	assert.ErrorIs(t, g.Pause(), ErrNotPlaying)
	assert.Equal(t, GameOver, g.Snapshot().State)
	assert.ErrorIs(t, g.Resume(), ErrNotPaused)
}

func TestPausedGameIgnoresTimer(t *testing.T) {
	factory := &seededFactory{seed: 9}
	ended := make(chan Snapshot, 1)
	g, err := New(context.Background(), Config{
		MazeFactory: factory.build,
		Levels: func(level int) Params {
			p := LevelParams(level)
			p.TimeLimit = 200 * time.Millisecond
			return p
		},
		OnEnd: func(s Snapshot) { ended <- s },
	})
	require.NoError(t, err)
	t.Cleanup(g.Stop)

	require.NoError(t, g.Pause())
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, Paused, g.Snapshot().State)
	assert.Empty(t, ended)

	require.NoError(t, g.Resume())
	select {
	case snap := <-ended:
		assert.Equal(t, GameOver, snap.State)
	case <-time.After(2 * time.Second):
		t.Fatal("resumed timer did not end the game")
	}
}
