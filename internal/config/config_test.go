package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	t.Chdir(dir)
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultSecret, cfg.Secret)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_SecretPrecedence(t *testing.T) {
	writeConfigFile(t, "secret: from-file\nport: \"9000\"\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Secret, "config file beats the default")
	assert.Equal(t, "9000", cfg.Port)

	t.Setenv("SECRET", "from-env")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Secret, "environment beats the config file")
}

func TestLoad_NormalizesDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{"development with default secret", Config{Env: "development", Port: "8080", Secret: DefaultSecret, DBDriver: "sqlite"}, false},
		{"missing port", Config{Secret: "s", DBDriver: "sqlite"}, true},
		{"missing secret", Config{Port: "8080", DBDriver: "sqlite"}, true},
		{"unknown driver", Config{Port: "8080", Secret: "s", DBDriver: "mysql"}, true},
		{"production with default secret", Config{Env: "production", Port: "8080", Secret: DefaultSecret, DBDriver: "postgres"}, true},
		{"production with short secret", Config{Env: "prod", Port: "8080", Secret: "short", DBDriver: "postgres"}, true},
		{"production with strong secret", Config{Env: "production", Port: "8080", Secret: "a-very-long-secret-that-is-over-32-chars", DBDriver: "postgres"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Origins(t *testing.T) {
	c := Config{AllowedOrigins: "http://a.test, http://b.test,,"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Origins())
}
