package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notewise/backend/internal/config"
)

func TestNewApp(t *testing.T) {
	ollamaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ollamaServer.Close()

	cfg := &config.Config{
		AppPort:              8000,
		DatabasePath:         filepath.Join(t.TempDir(), "test.db"),
		OllamaURL:            ollamaServer.URL,
		DefaultProvider:      "ollama",
		ReservedOutputTokens: 1024,
		LogLevel:             "DEBUG",
	}

	application, err := NewApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, application)

	defer func() { require.NoError(t, application.DB.Close()) }()

	assert.NotNil(t, application.DB)
	assert.NotNil(t, application.Server)
	assert.Equal(t, ":8000", application.Server.Addr)

	// Settings are seeded from config on first start.
	var provider string
	err = application.DB.QueryRow("SELECT value FROM settings WHERE key = 'provider'").Scan(&provider)
	require.NoError(t, err)
	assert.Equal(t, "ollama", provider)
}
