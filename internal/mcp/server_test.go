package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinacuity/clinical-note-parser/internal/config"
)

func newTestConfigManager(t *testing.T) *config.Manager {
	t.Helper()
	cm, err := config.NewManager()
	require.NoError(t, err)
	cm.GetConfig().Data.ReferenceDir = "../../data"
	return cm
}

func TestNewServer(t *testing.T) {
	configManager := newTestConfigManager(t)

	server, err := NewServer(configManager)
	require.NoError(t, err)
	defer server.Close()

	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.logger)
	assert.NotNil(t, server.parser)
}

func TestNewServer_RegistersClinicalTools(t *testing.T) {
	configManager := newTestConfigManager(t)

	server, err := NewServer(configManager)
	require.NoError(t, err)
	defer server.Close()

	toolNames := make(map[string]bool)
	for _, info := range server.toolRegistry.GetRegisteredToolsInfo() {
		toolNames[info.Name] = true
	}

	assert.True(t, toolNames["parse_clinical_note"])
	assert.True(t, toolNames["render_note"])
	assert.True(t, toolNames["submit_feedback"])
}
