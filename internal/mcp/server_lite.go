// Package mcp provides the MCP server implementation.
// This file contains the lightweight server that requires no external databases.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/clinacuity/clinical-note-parser/internal/cache"
	litecfg "github.com/clinacuity/clinical-note-parser/internal/config"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/feedback"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/protocol"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/tools"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/transport"
	"github.com/clinacuity/clinical-note-parser/internal/parser"
	"github.com/clinacuity/clinical-note-parser/internal/reference"
)

// LiteServer is a lightweight MCP server that requires no external databases.
// It uses in-memory caching and SQLite for persistence.
type LiteServer struct {
	config          *litecfg.LiteConfig
	mcpServer       *mcp.Server
	transportMgr    *transport.Manager
	activeTransport transport.Transport
	toolRegistry    *tools.ToolRegistry
	feedbackStore   feedback.Store
	cache           *cache.MemoryCache
	logger          *logrus.Logger
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithFeedbackStore sets a custom feedback store.
func WithFeedbackStore(store feedback.Store) LiteServerOption {
	return func(s *LiteServer) error {
		s.feedbackStore = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		s.logger = logger
		return nil
	}
}

// NewLiteServer creates a new lightweight MCP server instance.
// It requires no external databases - uses in-memory cache and SQLite.
func NewLiteServer(cfg *litecfg.LiteConfig, opts ...LiteServerOption) (*LiteServer, error) {
	server := &LiteServer{
		config: cfg,
		logger: logrus.New(),
	}

	if cfg.LogFormat == "text" {
		server.logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		server.logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	server.logger.SetLevel(level)

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	memCache, err := cache.NewMemoryCache(cfg.CacheMaxItems, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	server.cache = memCache

	if server.feedbackStore == nil {
		store, err := feedback.NewSQLiteStore(cfg.FeedbackDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create feedback store: %w", err)
		}
		server.feedbackStore = store
	}

	mcpConfig := &domain.MCPConfig{
		TransportType: cfg.Transport,
		HTTPPort:      cfg.HTTPPort,
	}

	transportMgr := transport.NewManager(server.logger, mcpConfig)
	router := protocol.NewMessageRouter(server.logger)

	tables, err := reference.Load(cfg.RefDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference tables: %w", err)
	}
	p := parser.New(tables)
	cachedParser := cache.NewCachedParser(p, memCache)

	toolRegistry := tools.NewToolRegistry(server.logger, router, cachedParser)
	if err := toolRegistry.RegisterAllTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	if err := registerFeedbackTools(toolRegistry, server.logger, server.feedbackStore, cfg.ExportDir()); err != nil {
		return nil, fmt.Errorf("failed to register feedback tools: %w", err)
	}

	if err := toolRegistry.ValidateAllTools(); err != nil {
		return nil, fmt.Errorf("tool validation failed: %w", err)
	}

	serverInfo := &mcp.Implementation{
		Name:    "clinacuity-mcp-server-lite",
		Version: "v0.1.0",
	}

	mcpServer := mcp.NewServer(serverInfo, nil)

	server.mcpServer = mcpServer
	server.transportMgr = transportMgr
	server.toolRegistry = toolRegistry

	if err := server.registerMCPTools(mcpServer, toolRegistry); err != nil {
		return nil, fmt.Errorf("failed to register MCP tools: %w", err)
	}

	server.logger.Info("Lite server initialized successfully")
	return server, nil
}

// registerMCPTools registers tools with the MCP SDK.
func (s *LiteServer) registerMCPTools(mcpServer *mcp.Server, toolRegistry *tools.ToolRegistry) error {
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

	s.logger.WithField("tool_count", len(toolsInfo)).Info("Successfully registered all tools")
	return nil
}

// Start starts the lite MCP server.
func (s *LiteServer) Start(ctx context.Context) error {
	s.logger.Info("Starting clinical note parser MCP server (Lite)...")

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
func (s *LiteServer) Close() error {
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

// GetFeedbackStore returns the feedback store for external access.
func (s *LiteServer) GetFeedbackStore() feedback.Store {
	return s.feedbackStore
}

// GetCache returns the memory cache for external access.
func (s *LiteServer) GetCache() *cache.MemoryCache {
	return s.cache
}
