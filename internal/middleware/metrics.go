package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/employee-admin/internal/service"
)

// UnmatchedRoute labels requests that hit no registered route, so probes for
// random URLs do not mint new label values.
const UnmatchedRoute = "unmatched"

// Metrics records latency and count per route pattern. Scrapes of the
// metrics endpoint itself are not counted.
func Metrics(metrics *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := map[string]struct{}{"/metrics": {}}
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = UnmatchedRoute
		}
		if _, ok := skipped[route]; ok {
			return
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
