package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.True(t, cfg.Server.RequestLogging())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "contacts.db", cfg.Database.Path)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestParseFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("GIN_LOGGING", "OFF")
	t.Setenv("READ_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DBHOST", "db:3306")
	t.Setenv("DBUSER", "contacts")
	t.Setenv("DBPWD", "secret")
	t.Setenv("DBNAME", "contacts")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Server.RequestLogging())
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, DatabaseConfig{
		Driver:   "mysql",
		Path:     "contacts.db",
		Host:     "db:3306",
		User:     "contacts",
		Password: "secret",
		Name:     "contacts",
		Migrate:  false,
	}, cfg.Database)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseInvalidDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	_, err := Parse()
	assert.EqualError(t, err, `invalid DB_DRIVER "postgres", must be one of sqlite, sqlite3, mysql`)
}

func TestParseEmptyPath(t *testing.T) {
	t.Setenv("DB_PATH", " ")
	_, err := Parse()
	assert.EqualError(t, err, "DB_PATH must not be empty")
}

func TestParseInvalidDuration(t *testing.T) {
	t.Setenv("WRITE_TIMEOUT", "soon")
	_, err := Parse()
	assert.ErrorContains(t, err, "WriteTimeout")
}

// TestLoadDotEnv expects values from the .env file unless the environment already has them.
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7000\nLOG_FORMAT=text\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("LOG_FORMAT", "json")
	t.Cleanup(func() {
		os.Unsetenv("PORT")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Server.Port)
}
