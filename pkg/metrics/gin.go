package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware records request count and latency per route. Requests
// that match no route are grouped under "unmatched".
func GinMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		httpRequests.WithLabelValues(service, method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(service, method, route).Observe(time.Since(start).Seconds())
	}
}
