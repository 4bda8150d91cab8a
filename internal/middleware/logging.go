package middleware

import (
	"time"

	"recruitment_portal/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const unmatchedRoute = "unmatched"

// RequestLogger writes one access log line per request
func RequestLogger(log *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP())
		if userID, ok := GetUserID(c); ok {
			event = event.Str("user_id", userID)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("request")
	}
}

// Metrics records request count and latency by route template
func Metrics(rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		rec.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
