package config

import (
	"time"

	"github.com/gin-gonic/gin"
)

const slowRequestThreshold = 200 * time.Millisecond

func PerformanceLogger(log *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", latency,
		}
		if latency > slowRequestThreshold {
			log.Warn("slow request", args...)
			return
		}
		log.Debug("request", args...)
	}
}
