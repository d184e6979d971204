package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "data", cfg.RefDir)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "stdio", cfg.Transport)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Equal(t, "stdio", cfg.Transport)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("CLINACUITY_DATA_DIR", "/tmp/test-clinacuity")
	os.Setenv("CLINACUITY_CACHE_MAX_ITEMS", "500")
	os.Setenv("CLINACUITY_CACHE_TTL", "12h")
	os.Setenv("CLINACUITY_TRANSPORT", "http")
	os.Setenv("CLINACUITY_HTTP_PORT", "9090")
	os.Setenv("CLINACUITY_LOG_LEVEL", "debug")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-clinacuity", cfg.DataDir)
	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.Equal(t, 12*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "http", cfg.Transport)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLiteConfig_FeedbackDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.clinical-note-parser"}

	path := cfg.FeedbackDBPath()

	assert.Equal(t, "/home/user/.clinical-note-parser/feedback.db", path)
}

func TestLiteConfig_ExportDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.clinical-note-parser"}

	path := cfg.ExportDir()

	assert.Equal(t, "/home/user/.clinical-note-parser/exports", path)
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	cfg := &LiteConfig{DataDir: filepath.Join(tmpDir, "clinacuity")}

	err = cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.ExportDir())
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"CLINACUITY_DATA_DIR",
		"CLINACUITY_REF_DIR",
		"CLINACUITY_CACHE_MAX_ITEMS",
		"CLINACUITY_CACHE_TTL",
		"CLINACUITY_TRANSPORT",
		"CLINACUITY_HTTP_PORT",
		"CLINACUITY_LOG_LEVEL",
		"CLINACUITY_LOG_FORMAT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
