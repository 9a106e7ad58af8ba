package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_PORT", "PORT", "STORE_DRIVER", "DATABASE_URL", "DATABASEURI", "POSTGRES_URL",
	"JWT_SECRET", "SECRET_KEY", "JWT_ISSUER", "JWT_EXPIRY", "CORS_ALLOWED_ORIGINS",
	"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	"DOTENV_ONLY",
}

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func missingDotEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/auth")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := load(missingDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "authservice", cfg.JWTIssuer)
	assert.Equal(t, 72*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFallbackKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASEURI", "postgresql://u:p@db:5432/auth")
	t.Setenv("SECRET_KEY", "legacy")

	cfg, err := load(missingDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "postgres://u:p@db:5432/auth", cfg.DatabaseURL)
	assert.Equal(t, "legacy", cfg.JWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "7000")
	t.Setenv("STORE_DRIVER", " Memory ")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("JWT_EXPIRY", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := load(missingDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.HTTPPort)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 90*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"STORE_DRIVER": "memory"}, "JWT_SECRET is required"},
		{"missing database", map[string]string{"JWT_SECRET": "s"}, "DATABASE_URL"},
		{"non postgres url", map[string]string{"JWT_SECRET": "s", "DATABASE_URL": "mysql://x"}, "DATABASE_URL"},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "redis"}, "unsupported STORE_DRIVER"},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "JWT_EXPIRY": "soon"}, "parse env"},
		{"negative expiry", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "JWT_EXPIRY": "-1h"}, "JWT_EXPIRY must be positive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := load(missingDotEnv(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_ISSUER", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	content := `# local settings
export STORE_DRIVER=memory
JWT_SECRET="quoted secret"
JWT_ISSUER=from-file
DOTENV_ONLY='single'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "quoted secret", cfg.JWTSecret)
	assert.Equal(t, "from-env", cfg.JWTIssuer)
	assert.Equal(t, "single", os.Getenv("DOTENV_ONLY"))
}

func TestLoadDotEnvMalformed(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BAD$KEY=value\n"), 0o600))

	_, err := load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading .env")
}
