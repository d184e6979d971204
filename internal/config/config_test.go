package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Data.ReferenceDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Audit.Enabled)
}

func TestManager_Validate_RejectsBadPort(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	m.config.Server.Port = 0
	assert.Error(t, m.Validate())
}

func TestManager_Validate_RejectsAuditEnabledWithoutURL(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	m.config.Audit.Enabled = true
	m.config.Audit.DatabaseURL = ""
	assert.Error(t, m.Validate())
}

func TestManager_Validate_AcceptsDefaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)
	assert.NoError(t, m.Validate())
}
