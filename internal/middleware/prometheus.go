package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gigboard/gigadmin/internal/metrics"
)

// PrometheusMiddleware records HTTP request duration and count. WebSocket
// upgrades are counted but kept out of the duration histogram since they last
// as long as the feed stays open.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		upgrade := c.IsWebsocket()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())

		path := c.FullPath() // route pattern keeps label cardinality bounded
		if path == "" {
			path = "unknown"
		}

		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if !upgrade {
			metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		}
	}
}
