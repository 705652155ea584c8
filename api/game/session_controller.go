package gameapi

import (
	"net/http"

	"github.com/beka-birhanu/gem-maze/api/identity"
	"github.com/beka-birhanu/gem-maze/game"
	"github.com/beka-birhanu/gem-maze/maze"
	"github.com/beka-birhanu/gem-maze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionController lets an authenticated player run a game.
type SessionController struct {
	gameSessionManager i.GameSessionManager
	encoder            game.Encoder
}

// NewSessionController initializes a SessionController.
func NewSessionController(gsm i.GameSessionManager, enc game.Encoder) (*SessionController, error) {
	return &SessionController{
		gameSessionManager: gsm,
		encoder:            enc,
	}, nil
}

// RegisterPublic registers public routes.
func (sc *SessionController) RegisterPublic(route *gin.RouterGroup) {}

// RegisterProtected registers protected routes.
func (sc *SessionController) RegisterProtected(route *gin.RouterGroup) {
	games := route.Group("/games")
	{
		games.POST("", sc.start)
		games.GET("/current", sc.current)
		games.POST("/current/moves", sc.move)
		games.POST("/current/next", sc.next)
		games.POST("/current/restart", sc.restart)
		games.POST("/current/pause", sc.pause)
		games.POST("/current/resume", sc.resume)
		games.DELETE("/current", sc.end)
	}
}

// start begins a new game for the player, replacing any running one.
func (sc *SessionController) start(ctx *gin.Context) {
	playerID, ok := sc.player(ctx)
	if !ok {
		return
	}

	snap, err := sc.gameSessionManager.NewSession(ctx.Request.Context(), playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, toSnapshotResponse(snap))
}

func (sc *SessionController) current(ctx *gin.Context) {
	playerID, ok := sc.player(ctx)
	if !ok {
		return
	}

	snap, err := sc.gameSessionManager.Snapshot(playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}

	if ctx.Query("format") == formatProtobuf {
		payload, err := sc.encoder.MarshalSnapshot(snap)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.Data(http.StatusOK, contentTypeProtobuf, payload)
		return
	}
	ctx.JSON(http.StatusOK, toSnapshotResponse(snap))
}

func (sc *SessionController) move(ctx *gin.Context) {
	playerID, ok := sc.player(ctx)
	if !ok {
		return
	}

	var request MoveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := maze.ParseDirection(request.Direction)
	if err != nil {
		writeError(ctx, err)
		return
	}

	result, snap, err := sc.gameSessionManager.Move(playerID, d)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toMoveResponse(result, snap))
}

func (sc *SessionController) next(ctx *gin.Context) {
	playerID, ok := sc.player(ctx)
	if !ok {
		return
	}

	snap, err := sc.gameSessionManager.NextLevel(ctx.Request.Context(), playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toSnapshotResponse(snap))
}

func (sc *SessionController) restart(ctx *gin.Context) {
	playerID, ok := sc.player(ctx)
	if !ok {
		return
	}

	snap, err := sc.gameSessionManager.Restart(ctx.Request.Context(), playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toSnapshotResponse(snap))
}

func (sc *SessionController) pause(ctx *gin.Context) {
	playerID, ok := sc.player(ctx)
	if !ok {
		return
	}

	snap, err := sc.gameSessionManager.Pause(playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toSnapshotResponse(snap))
}

func (sc *SessionController) resume(ctx *gin.Context) {
	playerID, ok := sc.player(ctx)
	if !ok {
		return
	}

	snap, err := sc.gameSessionManager.Resume(playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toSnapshotResponse(snap))
}

func (sc *SessionController) end(ctx *gin.Context) {
	playerID, ok := sc.player(ctx)
	if !ok {
		return
	}

	if err := sc.gameSessionManager.End(playerID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// player resolves the authenticated player or writes 401.
func (sc *SessionController) player(ctx *gin.Context) (uuid.UUID, bool) {
	playerID, err := identity.PlayerID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return uuid.Nil, false
	}
	return playerID, true
}
