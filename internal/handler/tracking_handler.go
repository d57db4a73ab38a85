package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safetour/routeguard/internal/models"
	"github.com/safetour/routeguard/internal/spatial"
	"github.com/safetour/routeguard/internal/tracking"
	"github.com/safetour/routeguard/pkg/response"
)

const defaultCheckpointSteps = 12

// TrackingHandler handles route planning and live position requests
type TrackingHandler struct {
	engine *tracking.Engine
	now    func() time.Time
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(engine *tracking.Engine) *TrackingHandler {
	return &TrackingHandler{
		engine: engine,
		now:    time.Now,
	}
}

// SetRoute handles POST /api/v1/route
func (h *TrackingHandler) SetRoute(c *gin.Context) {
	var req models.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "subjectId and route are required")
		return
	}
	if req.Route == nil {
		response.BadRequest(c, "route must be an array of {lat, lng}")
		return
	}

	if err := h.engine.SetRoute(req.SubjectID, *req.Route); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"subjectId":         req.SubjectID,
		"waypoints":         len(*req.Route),
		"routeLengthMeters": spatial.PathLength(*req.Route),
	})
}

// GetRoute handles GET /api/v1/route/:subjectId
func (h *TrackingHandler) GetRoute(c *gin.Context) {
	route, err := h.engine.Route(c.Param("subjectId"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, route)
}

// SetCheckpointRoute handles POST /api/v1/route/checkpoint. The route is a
// straight line from -> to split into steps segments.
func (h *TrackingHandler) SetCheckpointRoute(c *gin.Context) {
	var req models.CheckpointRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "subjectId, from and to are required")
		return
	}
	if req.Steps <= 0 {
		req.Steps = defaultCheckpointSteps
	}
	if req.Steps > 1000 {
		response.BadRequest(c, "steps must not exceed 1000")
		return
	}

	route := spatial.LinearRoute(req.From, req.To, req.Steps)
	if err := h.engine.SetRoute(req.SubjectID, route); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, route)
}

// ReportLocation handles POST /api/v1/location
func (h *TrackingHandler) ReportLocation(c *gin.Context) {
	var req models.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "subjectId, lat and lng are required")
		return
	}

	ts := h.now().UnixMilli()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	result, err := h.engine.ReportPosition(req.SubjectID, models.PositionSample{
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		Timestamp: ts,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// GetStatus handles GET /api/v1/status/:subjectId
func (h *TrackingHandler) GetStatus(c *gin.Context) {
	status, err := h.engine.Status(c.Param("subjectId"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, status)
}

// GetHistory handles GET /api/v1/history/:subjectId
func (h *TrackingHandler) GetHistory(c *gin.Context) {
	history, err := h.engine.History(c.Param("subjectId"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, history)
}

// ClearHistory handles DELETE /api/v1/history/:subjectId
func (h *TrackingHandler) ClearHistory(c *gin.Context) {
	subjectID := c.Param("subjectId")
	if err := h.engine.ClearHistory(subjectID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"subjectId": subjectID, "cleared": true})
}

// ListTracked handles GET /api/v1/tracked
func (h *TrackingHandler) ListTracked(c *gin.Context) {
	tracked := h.engine.ListAllTracked(h.now())
	response.Success(c, gin.H{
		"data":  tracked,
		"count": len(tracked),
	})
}
