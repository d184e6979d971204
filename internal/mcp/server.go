package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/clinacuity/clinical-note-parser/internal/config"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/feedback"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/protocol"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/tools"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/transport"
	"github.com/clinacuity/clinical-note-parser/internal/parser"
	"github.com/clinacuity/clinical-note-parser/internal/reference"
)

// Server is the full MCP server implementation, backed by a SQLite feedback
// store. It calls the parser directly, without a result cache.
type Server struct {
	config          *config.Manager
	parser          *parser.Parser
	mcpServer       *mcp.Server
	transportMgr    *transport.Manager
	activeTransport transport.Transport
	protocolCore    *protocol.ProtocolCore
	toolRegistry    *tools.ToolRegistry
	feedbackStore   feedback.Store
	logger          *logrus.Logger
}

// NewServer creates a new MCP server instance wired to the clinical note parser.
func NewServer(configManager *config.Manager) (*Server, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := configManager.GetConfig()

	tables, err := reference.Load(cfg.Data.ReferenceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference tables: %w", err)
	}
	p := parser.New(tables)

	mcpConfig := &domain.MCPConfig{TransportType: "stdio", HTTPHost: cfg.Server.Host, HTTPPort: cfg.Server.Port}
	transportMgr := transport.NewManager(logger, mcpConfig)
	protocolCore := protocol.NewProtocolCore(logger)
	router := protocol.NewMessageRouter(logger)

	toolRegistry := tools.NewToolRegistry(logger, router, p)
	if err := toolRegistry.RegisterAllTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	feedbackDir := getFeedbackDataDir()
	if err := os.MkdirAll(feedbackDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create feedback data dir: %w", err)
	}
	feedbackStore, err := feedback.NewSQLiteStore(filepath.Join(feedbackDir, "feedback.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback store: %w", err)
	}

	exportDir := filepath.Join(feedbackDir, "exports")
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		feedbackStore.Close()
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := registerFeedbackTools(toolRegistry, logger, feedbackStore, exportDir); err != nil {
		feedbackStore.Close()
		return nil, fmt.Errorf("failed to register feedback tools: %w", err)
	}

	if err := toolRegistry.ValidateAllTools(); err != nil {
		feedbackStore.Close()
		return nil, fmt.Errorf("tool validation failed: %w", err)
	}

	serverInfo := &mcp.Implementation{
		Name:    "clinacuity-mcp-server",
		Version: "v1.0.0",
	}
	mcpServer := mcp.NewServer(serverInfo, nil)

	server := &Server{
		config:        configManager,
		parser:        p,
		mcpServer:     mcpServer,
		transportMgr:  transportMgr,
		protocolCore:  protocolCore,
		toolRegistry:  toolRegistry,
		feedbackStore: feedbackStore,
		logger:        logger,
	}

	if err := server.registerMCPTools(mcpServer, toolRegistry); err != nil {
		return nil, fmt.Errorf("failed to register MCP tools: %w", err)
	}

	return server, nil
}

// registerMCPTools registers our tools with the MCP SDK.
func (s *Server) registerMCPTools(mcpServer *mcp.Server, toolRegistry *tools.ToolRegistry) error {
	s.logger.Info("Registering tools with MCP SDK...")

	toolsInfo := toolRegistry.GetRegisteredToolsInfo()
	for _, toolInfo := range toolsInfo {
		toolDef := &mcp.Tool{
			Name:        toolInfo.Name,
			Description: toolInfo.Description,
		}
		handler := NewMCPToolHandler(toolRegistry, toolInfo.Name, s.logger)
		mcpServer.AddTool(toolDef, handler)
		s.logger.WithField("tool_name", toolInfo.Name).Debug("Registered MCP tool")
	}

	s.logger.WithField("tool_count", len(toolsInfo)).Info("Successfully registered all tools with MCP SDK")
	return nil
}

// Start starts the MCP server with the appropriate transport.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting clinical note parser MCP server...")

	activeTransport, err := s.transportMgr.StartTransport(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.activeTransport = activeTransport
	s.logger.WithField("transport_type", activeTransport.GetType()).Info("Transport initialized")

	mcpTransport := NewMCPTransportBridge(activeTransport, s.logger)
	if err := s.mcpServer.Run(ctx, mcpTransport); err != nil {
		s.activeTransport.Close()
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.feedbackStore != nil {
		if err := s.feedbackStore.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close feedback store")
		}
	}
	if s.activeTransport != nil {
		s.activeTransport.Close()
	}
	return nil
}

// getFeedbackDataDir returns the directory for feedback data storage.
func getFeedbackDataDir() string {
	if dir := os.Getenv("CLINACUITY_DATA_DIR"); dir != "" {
		return dir
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".clinical-note-parser")
}
