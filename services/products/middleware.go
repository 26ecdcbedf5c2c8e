package main

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIKeyAuth valida el API Key compartido entre servicios.
// The comparison is constant-time so the key cannot be probed byte by byte.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-API-Key")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorDocument(http.StatusUnauthorized, "Unauthorized", "API Key inválida o no proporcionada"))
			return
		}
		c.Next()
	}
}

// ValidateJSONAPI exige Content-Type application/vnd.api+json en escrituras.
func ValidateJSONAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPatch {
			contentType := c.GetHeader("Content-Type")
			if !strings.Contains(contentType, "application/vnd.api+json") {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType,
					newErrorDocument(http.StatusUnsupportedMediaType, "Unsupported Media Type", "Content-Type debe ser application/vnd.api+json"))
				return
			}
		}
		c.Next()
	}
}

// RequestID asigna un identificador único a cada request entrante.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}
