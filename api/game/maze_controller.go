package gameapi

import (
	"math/rand/v2"
	"net/http"

	"github.com/beka-birhanu/gem-maze/game"
	"github.com/beka-birhanu/gem-maze/service/i"
	"github.com/gin-gonic/gin"
)

// MazeController generates mazes on request.
type MazeController struct {
	mazes   i.MazeBuilder
	encoder game.Encoder
}

// NewMazeController initializes a MazeController.
func NewMazeController(mb i.MazeBuilder, enc game.Encoder) (*MazeController, error) {
	return &MazeController{
		mazes:   mb,
		encoder: enc,
	}, nil
}

// RegisterPublic registers public routes.
func (mc *MazeController) RegisterPublic(route *gin.RouterGroup) {
	route.POST("/mazes", mc.generate)
}

// RegisterProtected registers protected routes.
func (mc *MazeController) RegisterProtected(route *gin.RouterGroup) {}

// generate builds a maze and writes it as JSON, ASCII text or protobuf.
func (mc *MazeController) generate(ctx *gin.Context) {
	var request MazeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seed := rand.Uint64()
	if request.Seed != nil {
		seed = *request.Seed
	}

	m, err := mc.mazes.Maze(ctx.Request.Context(), i.MazeRequest{
		Width:     request.Width,
		Height:    request.Height,
		ItemCount: request.Items,
		Seed:      seed,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	switch ctx.Query("format") {
	case formatText:
		ctx.String(http.StatusOK, m.String())
	case formatProtobuf:
		payload, err := mc.encoder.MarshalLayout(m.Layout())
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.Data(http.StatusOK, contentTypeProtobuf, payload)
	default:
		ctx.JSON(http.StatusOK, toMazeResponse(m.Layout()))
	}
}
