package domain

// MCPConfig configures which transport the MCP server listens on.
// It is transport plumbing, not clinical content, but lives here so both
// internal/mcp and internal/mcp/transport can depend on the domain package
// without an import cycle back to internal/config.
type MCPConfig struct {
	TransportType string
	HTTPHost      string
	HTTPPort      int
}
