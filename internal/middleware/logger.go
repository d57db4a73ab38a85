package middleware

import (
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safetour/routeguard/internal/logger"
	"github.com/safetour/routeguard/internal/metrics"
)

// Logger middleware logs HTTP requests and records request metrics
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := redactQuery(c.Request.URL.Query())

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		// label by route template so /status/:subjectId stays one series
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(latency.Microseconds()) / 1000)

		if raw != "" {
			path = path + "?" + raw
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"status", status,
			"latency_ms", latency.Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.L().Error("http_request", attrs...)
		case status >= 400:
			logger.L().Warn("http_request", attrs...)
		default:
			logger.L().Info("http_request", attrs...)
		}
	}
}

// redactQuery masks credentials passed in the query string
func redactQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	if _, ok := q["token"]; ok {
		q.Set("token", "REDACTED")
	}
	return q.Encode()
}
