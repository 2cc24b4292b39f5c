package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"API_BASE_URL", "API_TIMEOUT", "SERVER_PORT", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
		"SESSION_STORE", "SESSION_TTL", "SESSION_FILE_PATH", "SESSION_ENCRYPTION_KEY", "SESSION_SWEEP_SCHEDULE", "DB_HOST", "MAX_UPLOAD_MB", "OPS_API_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api/v1", cfg.API.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 168*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "@every 10m", cfg.Session.SweepSchedule)
	assert.Equal(t, int64(200<<20), cfg.Server.MaxUploadSize)
	assert.Empty(t, cfg.Server.OpsAPIKey)
	assert.False(t, cfg.JournalEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://olp.example.com/api/v1/")
	t.Setenv("API_TIMEOUT", "15s")
	t.Setenv("SERVER_PORT", "4000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "olp")
	t.Setenv("DB_NAME", "portal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://olp.example.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.True(t, cfg.JournalEnabled())
	assert.Equal(t, "olp:@tcp(db:3306)/portal?parseTime=true&charset=utf8mb4", cfg.DSN())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "invalid port", env: map[string]string{"SERVER_PORT": "abc"}},
		{name: "invalid timeout", env: map[string]string{"API_TIMEOUT": "soon"}},
		{name: "unknown store", env: map[string]string{"SESSION_STORE": "cookie"}},
		{name: "file store without path", env: map[string]string{"SESSION_STORE": "file", "SESSION_FILE_PATH": ""}},
		{name: "short encryption key", env: map[string]string{"SESSION_ENCRYPTION_KEY": "short"}},
		{name: "db without user", env: map[string]string{"DB_HOST": "db", "DB_USER": "", "DB_NAME": "portal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
