package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/safetour/routeguard/internal/spatial"
	"github.com/safetour/routeguard/pkg/response"
)

// ZoneHandler serves the static zone list
type ZoneHandler struct {
	zones *spatial.ZoneIndex
}

// NewZoneHandler creates a new zone handler
func NewZoneHandler(zones *spatial.ZoneIndex) *ZoneHandler {
	return &ZoneHandler{zones: zones}
}

// ListZones handles GET /api/v1/zones
func (h *ZoneHandler) ListZones(c *gin.Context) {
	response.Success(c, h.zones.All())
}
