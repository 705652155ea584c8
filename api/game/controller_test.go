package gameapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beka-birhanu/gem-maze/api"
	api_i "github.com/beka-birhanu/gem-maze/api/i"
	"github.com/beka-birhanu/gem-maze/api/identity"
	"github.com/beka-birhanu/gem-maze/game"
	pb "github.com/beka-birhanu/gem-maze/game/pb_encoder"
	"github.com/beka-birhanu/gem-maze/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}

// uuidTokenizer accepts any token that is a player uuid.
type uuidTokenizer struct{}

func (uuidTokenizer) Generate(map[string]any, time.Duration) (string, error) {
	return "", errors.New("not supported")
}

func (uuidTokenizer) Decode(token string) (map[string]any, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, err
	}
	return map[string]any{"userID": token}, nil
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	encoder := &pb.Protobuf{}
	mazes := service.NewMazeService(&service.MazeServiceConfig{Encoder: encoder, Logger: nopLogger{}})
	gsm, err := service.NewGameSessionManager(&service.Config{
		MazeFactory: mazes.LevelFactory(),
		Levels: func(int) game.Params {
			return game.Params{Width: 2, Height: 1, TimeLimit: time.Minute}
		},
		Logger: nopLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(gsm.StopAll)

	mazeController, err := NewMazeController(mazes, encoder)
	require.NoError(t, err)
	sessionController, err := NewSessionController(gsm, encoder)
	require.NoError(t, err)

	return api.NewRouter(api.Config{
		BaseURL:                 "/api",
		Mode:                    gin.TestMode,
		Controllers:             []api_i.Controller{mazeController, sessionController},
		AuthorizationMiddleware: identity.Authoriz(uuidTokenizer{}),
	}).Engine()
}

func do(engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestGenerateMaze(t *testing.T) {
	engine := newTestEngine(t)
	request := gin.H{"width": 5, "height": 4, "items": 3, "seed": 42}

	rec := do(engine, http.MethodPost, "/api/v1/mazes", "", request)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var first MazeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, 5, first.Width)
	assert.Equal(t, 4, first.Height)
	assert.Equal(t, uint64(42), first.Seed)
	assert.Equal(t, Position{X: 4, Y: 3}, first.Exit)
	require.Len(t, first.Cells, 4)
	assert.Len(t, first.Cells[0], 5)
	assert.Len(t, first.Items, 3)

	rec = do(engine, http.MethodPost, "/api/v1/mazes", "", request)
	var second MazeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first, second)
}

func TestGenerateMazeFormats(t *testing.T) {
	engine := newTestEngine(t)
	request := gin.H{"width": 3, "height": 3, "items": 2, "seed": 7}

	rec := do(engine, http.MethodPost, "/api/v1/mazes?format=text", "", request)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), " S ")
	assert.Contains(t, rec.Body.String(), " E ")

	rec = do(engine, http.MethodPost, "/api/v1/mazes?format=pb", "", request)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeProtobuf, rec.Header().Get("Content-Type"))
	layout, err := (&pb.Protobuf{}).UnmarshalLayout(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, layout.Width)
	assert.Equal(t, uint64(7), layout.Seed)
	assert.Len(t, layout.Items, 2)
}

func TestGenerateMazeRejectsBadRequests(t *testing.T) {
	engine := newTestEngine(t)
	tests := []struct {
		name string
		body gin.H
	}{
		{"zero width", gin.H{"width": 0, "height": 4}},
		{"too tall", gin.H{"width": 4, "height": 201}},
		{"negative items", gin.H{"width": 4, "height": 4, "items": -1}},
		{"not enough room", gin.H{"width": 2, "height": 2, "items": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(engine, http.MethodPost, "/api/v1/mazes", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestGameSessionRoutes(t *testing.T) {
	engine := newTestEngine(t)
	player := uuid.NewString()

	rec := do(engine, http.MethodPost, "/api/v1/games", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(engine, http.MethodGet, "/api/v1/games/current", player, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/games", player, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var snap SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, "playing", snap.State)
	assert.Equal(t, Position{X: 0, Y: 0}, snap.Player)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/moves", player, gin.H{"direction": "up"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/moves", player, gin.H{"direction": "west"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/next", player, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/resume", player, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/pause", player, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "paused", snap.State)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/moves", player, gin.H{"direction": "east"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/resume", player, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "playing", snap.State)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/moves", player, gin.H{"direction": "east"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var move MoveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &move))
	assert.Equal(t, "level_complete", move.State)
	assert.Equal(t, Position{X: 1, Y: 0}, move.Player)
	assert.Positive(t, move.TimeBonus)
	assert.Equal(t, move.TimeBonus, move.Game.Score)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/moves", player, gin.H{"direction": "west"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/next", player, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.Level)
	assert.Equal(t, move.Game.Score, snap.Score)

	rec = do(engine, http.MethodPost, "/api/v1/games/current/restart", player, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Level)
	assert.Zero(t, snap.Score)

	rec = do(engine, http.MethodGet, "/api/v1/games/current?format=pb", player, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decoded, err := (&pb.Protobuf{}).UnmarshalSnapshot(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.Level)
	assert.Equal(t, game.Playing, decoded.State)

	rec = do(engine, http.MethodDelete, "/api/v1/games/current", player, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(engine, http.MethodDelete, "/api/v1/games/current", player, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
