// Package middleware holds Gin middleware.
package middleware

import (
	"time"

	"docquery-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// RequestLogger is a Gin middleware that logs each request with its status,
// latency and client address. Request bodies are not logged because document
// uploads can be large binaries.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
	}
}
