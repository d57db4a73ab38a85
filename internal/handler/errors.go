package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/safetour/routeguard/internal/tracking"
	"github.com/safetour/routeguard/pkg/response"
)

// writeError maps engine errors onto the response envelope
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracking.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, tracking.ErrNotFound):
		response.NotFound(c, "Subject not found")
	default:
		_ = c.Error(err)
		response.InternalError(c, err.Error())
	}
}
