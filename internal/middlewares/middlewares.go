package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ideabosque/openai-funct-base/internal/logging"
	"github.com/ideabosque/openai-funct-base/internal/metrics"
)

const (
	// RequestIDHeader carries the request id in and out of the proxy.
	RequestIDHeader = "X-Request-Id"
	// RequestIDKey stores the request id in the gin context.
	RequestIDKey = "request_id"
)

// CORS allows browser clients to call the proxy.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Endpoint-Id, "+RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestID reuses an incoming X-Request-Id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs and counts every served request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(route, c.Writer.Status())
		logging.Info("Request served", map[string]interface{}{
			"method":     c.Request.Method,
			"route":      route,
			"status":     c.Writer.Status(),
			"elapsed_ms": time.Since(start).Milliseconds(),
			"request_id": c.GetString(RequestIDKey),
		})
	}
}
