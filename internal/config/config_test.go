package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"TASKS_ADDR", "DATABASE_URL", "CORS_ORIGIN", "TASKS_STATIC_DIR", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "sqlite://data/tasks.db", cfg.DatabaseURL)
	assert.Equal(t, "http://localhost:9898", cfg.CORSOrigin)
	assert.Empty(t, cfg.StaticDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadDotEnv(t *testing.T) {
	// t.Setenv restores the original value; unset so the file can supply it
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	t.Setenv("CORS_ORIGIN", "https://board.example.com")

	path := filepath.Join(t.TempDir(), ".env")
	content := "DATABASE_URL=postgres://tasks:secret@db:5432/tasks?sslmode=disable\nCORS_ORIGIN=http://ignored\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://tasks:secret@db:5432/tasks?sslmode=disable", cfg.DatabaseURL)
	// the environment takes precedence over the file
	assert.Equal(t, "https://board.example.com", cfg.CORSOrigin)
}
