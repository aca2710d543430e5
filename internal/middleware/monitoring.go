package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"whisperwall/backend/internal/monitoring"
)

// HTTPMetrics HTTP 指标中间件
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		monitoring.RecordHTTPRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
