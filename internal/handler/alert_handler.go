package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safetour/routeguard/internal/alert"
	"github.com/safetour/routeguard/internal/models"
	"github.com/safetour/routeguard/internal/repository"
	"github.com/safetour/routeguard/pkg/response"
)

// AlertArchive reads archived alerts; implemented by service.AlertArchiver
type AlertArchive interface {
	List(ctx context.Context, subjectID string, limit int) ([]models.Alert, error)
	Hotspots(ctx context.Context, precision, limit int) ([]models.Hotspot, error)
}

// AlertHandler handles alert log requests
type AlertHandler struct {
	sink    *alert.Sink
	archive AlertArchive // nil when the archive is disabled
	now     func() time.Time
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(sink *alert.Sink, archive AlertArchive) *AlertHandler {
	return &AlertHandler{
		sink:    sink,
		archive: archive,
		now:     time.Now,
	}
}

// ListAlerts handles GET /api/v1/alerts/:subjectId
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	response.Success(c, h.sink.ListForSubject(c.Param("subjectId")))
}

// ListArchived handles GET /api/v1/alerts/:subjectId/archive
func (h *AlertHandler) ListArchived(c *gin.Context) {
	if h.archive == nil {
		response.NotFound(c, "Alert archive is disabled")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		response.BadRequest(c, "Invalid limit parameter")
		return
	}

	alerts, err := h.archive.List(c.Request.Context(), c.Param("subjectId"), limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, alerts)
}

// ListHotspots handles GET /api/v1/hotspots?precision=&limit=
func (h *AlertHandler) ListHotspots(c *gin.Context) {
	if h.archive == nil {
		response.NotFound(c, "Alert archive is disabled")
		return
	}

	precision, err := strconv.Atoi(c.DefaultQuery("precision", "6"))
	if err != nil || precision < 1 || precision > repository.ArchiveGeohashPrecision {
		response.BadRequest(c, "Invalid precision parameter")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		response.BadRequest(c, "Invalid limit parameter")
		return
	}

	hotspots, err := h.archive.Hotspots(c.Request.Context(), precision, limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, hotspots)
}

// EmitDebugAlert handles POST /api/v1/debug/alert
func (h *AlertHandler) EmitDebugAlert(c *gin.Context) {
	var req models.DebugAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "subjectId, lat and lng are required")
		return
	}

	sample := models.PositionSample{Lat: *req.Lat, Lng: *req.Lng, Timestamp: h.now().UnixMilli()}
	if req.Timestamp != nil {
		sample.Timestamp = *req.Timestamp
	}
	if p := sample.Point(); !p.IsFinite() || !p.InRange() {
		response.BadRequest(c, "lat/lng out of range")
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = models.AlertDebug
	}

	a := models.NewAlert(req.SubjectID, kind, sample, req.DistanceMeters)
	h.sink.Publish(a)
	response.Success(c, a)
}
