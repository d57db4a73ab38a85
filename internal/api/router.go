package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safetour/routeguard/internal/alert"
	"github.com/safetour/routeguard/internal/config"
	"github.com/safetour/routeguard/internal/handler"
	"github.com/safetour/routeguard/internal/metrics"
	"github.com/safetour/routeguard/internal/middleware"
	"github.com/safetour/routeguard/internal/realtime"
	"github.com/safetour/routeguard/internal/tracking"
)

// Deps 路由依赖
type Deps struct {
	Engine  *tracking.Engine
	Sink    *alert.Sink
	Hub     *realtime.Hub           // nil disables /ws
	Archive handler.AlertArchive    // nil disables the archive endpoint
	Limiter *middleware.RateLimiter // nil disables rate limiting on POST /location
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"message":  "routeguard is running",
			"subjects": deps.Engine.Count(),
			"alerts":   deps.Sink.Len(),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	trackingHandler := handler.NewTrackingHandler(deps.Engine)
	alertHandler := handler.NewAlertHandler(deps.Sink, deps.Archive)
	zoneHandler := handler.NewZoneHandler(deps.Engine.Zones())

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		// 路线
		route := api.Group("/route")
		{
			route.POST("", trackingHandler.SetRoute)
			route.POST("/checkpoint", trackingHandler.SetCheckpointRoute)
			route.GET("/:subjectId", trackingHandler.GetRoute)
		}

		// 实时位置
		api.POST("/location", middleware.RateLimit(deps.Limiter), trackingHandler.ReportLocation)
		api.GET("/status/:subjectId", trackingHandler.GetStatus)
		api.GET("/history/:subjectId", trackingHandler.GetHistory)
		api.DELETE("/history/:subjectId", trackingHandler.ClearHistory)
		api.GET("/tracked", trackingHandler.ListTracked)

		// 告警
		alerts := api.Group("/alerts")
		{
			alerts.GET("/:subjectId", alertHandler.ListAlerts)
			alerts.GET("/:subjectId/archive", alertHandler.ListArchived)
		}

		api.GET("/hotspots", alertHandler.ListHotspots)
		api.GET("/zones", zoneHandler.ListZones)

		if deps.Hub != nil {
			api.GET("/ws", deps.Hub.ServeWS)
		}

		if cfg.DebugEndpoints {
			api.POST("/debug/alert", alertHandler.EmitDebugAlert)
		}
	}

	return r
}
