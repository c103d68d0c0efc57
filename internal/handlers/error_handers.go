package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ideabosque/openai-funct-base/internal/logging"
	"github.com/ideabosque/openai-funct-base/internal/middlewares"
	"github.com/ideabosque/openai-funct-base/internal/models"
)

// ErrorHandler middleware handles errors and logs them
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			logging.Error("Request error", map[string]interface{}{
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(middlewares.RequestIDKey),
				"error":      err.Error(),
			})
			if c.Writer.Written() {
				return
			}
			c.JSON(http.StatusInternalServerError, models.GraphQLResponse{
				Errors: []models.GraphQLError{{Message: err.Error()}},
			})
		}
	}
}
