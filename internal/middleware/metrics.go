package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studytrack/studytrack-api/internal/service"
)

// Metrics records duration and count for every request. The route
// template (not the raw URL) labels the series so path parameters do
// not explode cardinality; unmatched routes collapse into one label.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
