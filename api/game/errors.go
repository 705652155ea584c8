package gameapi

import (
	"errors"
	"net/http"

	"github.com/beka-birhanu/gem-maze/game"
	"github.com/beka-birhanu/gem-maze/maze"
	"github.com/beka-birhanu/gem-maze/service"
	"github.com/gin-gonic/gin"
)

const (
	formatText     = "text"
	formatProtobuf = "pb"

	contentTypeProtobuf = "application/x-protobuf"
)

// statusFor maps service and model errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, game.ErrBlocked),
		errors.Is(err, game.ErrNotPlaying),
		errors.Is(err, game.ErrLevelNotComplete),
		errors.Is(err, game.ErrNotPaused):
		return http.StatusConflict
	case errors.Is(err, maze.ErrInvalidDimensions),
		errors.Is(err, maze.ErrInsufficientSpace),
		errors.Is(err, maze.ErrInvalidItemCount),
		errors.Is(err, maze.ErrInvalidDirection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = ctx.Error(err)
		ctx.JSON(status, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
