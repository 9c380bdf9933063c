package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentiment-gateway/backend/internal/logger"
)

// RecoveryMiddleware turns a handler panic into a JSON 500. Only the panic
// message reaches the client; the stack stays in the logs.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(logger.GetLogger().Writer(), func(c *gin.Context, recovered any) {
		logger.Error("Unhandled error", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"panic": fmt.Sprint(recovered),
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprint(recovered),
		})
	})
}
