package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"vessel-registry/internal/adapters/secondary/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records every request against its route template so that path
// parameters do not explode label cardinality.
func Metrics(m metrics.RequestMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
