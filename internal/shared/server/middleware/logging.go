package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/telemetry"
)

const runIDKey = "runId"

// SetRunID tags the request log with the analysis run it produced.
func SetRunID(c *gin.Context, runID string) {
	if runID != "" {
		c.Set(runIDKey, runID)
	}
}

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if runID := c.GetString(runIDKey); runID != "" {
			fields["run_id"] = runID
		}
		telemetry.Info("request.complete", fields)
	}
}
