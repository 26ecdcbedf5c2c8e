package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Act: no app.env present in a fresh directory
	cfg, err := LoadConfig(t.TempDir())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "products-service", cfg.ServiceName)
	assert.Equal(t, "3001", cfg.Port)
}
