package middleware

import (
	"strconv"
	"time"

	"llm_gateway/internal/logging"
	"llm_gateway/internal/observability"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request and counts it by route. metrics may be nil.
func RequestLogger(log logging.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if metrics != nil {
			metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		}

		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}
		switch {
		case status >= 500:
			log.Error(c.Request.Context(), "http request", args...)
		case status >= 400:
			log.Warn(c.Request.Context(), "http request", args...)
		default:
			log.Info(c.Request.Context(), "http request", args...)
		}
	}
}
