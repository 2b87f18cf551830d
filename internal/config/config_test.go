package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "http://localhost:8080", cfg.App.BaseURL)
	assert.Equal(t, []string{"simplified"}, cfg.PathGen.Rules)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "development", cfg.Log.Environment)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/aliases?sslmode=disable")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_TTL", "30s")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("URLALIAS_PATH_RULES", "simplified, strip_diacritics ,lowercase")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"simplified", "strip_diacritics", "lowercase"}, cfg.PathGen.Rules)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port", "PORT", "99999"},
		{"driver", "DB_DRIVER", "mysql"},
		{"environment", "ENVIRONMENT", "staging"},
		{"log level", "LOG_LEVEL", "trace"},
		{"path rule", "URLALIAS_PATH_RULES", "simplified,unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
