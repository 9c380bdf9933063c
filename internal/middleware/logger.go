package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sentiment-gateway/backend/internal/logger"
)

// CustomLoggerMiddleware logs every HTTP request through the application logger
func CustomLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		start := time.Now()

		// Process request
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		entry := logger.GetLogger().WithFields(logrus.Fields{
			"component": "api",
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   latency.String(),
			"client_ip": c.ClientIP(),
		})

		switch {
		case status >= 500:
			entry.Error("[API] request failed")
		case status >= 400:
			entry.Warn("[API] request rejected")
		default:
			entry.Info("[API] request handled")
		}
	}
}
