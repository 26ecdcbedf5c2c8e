package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiddlewareRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), APIKeyAuth("secret-key-123"), ValidateJSONAPI())
	r.GET("/protected", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.POST("/protected", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func TestAPIKeyAuth_Unauthorized(t *testing.T) {
	// Arrange
	r := setupMiddlewareRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-API-Key", "invalid-key")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var doc ErrorDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "401", doc.Errors[0].Status)
	assert.Equal(t, "API Key inválida o no proporcionada", doc.Errors[0].Detail)
}

func TestAPIKeyAuth_Authorized(t *testing.T) {
	// Arrange
	r := setupMiddlewareRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-API-Key", "secret-key-123")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestValidateJSONAPI_RejectsPlainJSONWrites(t *testing.T) {
	// Arrange
	r := setupMiddlewareRouter()
	req := httptest.NewRequest(http.MethodPost, "/protected", strings.NewReader(`{}`))
	req.Header.Set("X-API-Key", "secret-key-123")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestValidateJSONAPI_AcceptsJSONAPIWrites(t *testing.T) {
	// Arrange
	r := setupMiddlewareRouter()
	req := httptest.NewRequest(http.MethodPost, "/protected", strings.NewReader(`{}`))
	req.Header.Set("X-API-Key", "secret-key-123")
	req.Header.Set("Content-Type", "application/vnd.api+json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
}
