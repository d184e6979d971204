// Package api exposes the clinical note parser over a small HTTP API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clinacuity/clinical-note-parser/internal/audit"
	"github.com/clinacuity/clinical-note-parser/internal/config"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/enrich"
	"github.com/clinacuity/clinical-note-parser/internal/mcp/health"
	"github.com/clinacuity/clinical-note-parser/internal/middleware"
	"github.com/clinacuity/clinical-note-parser/internal/parser"
)

// Server represents the HTTP server.
type Server struct {
	configManager *config.Manager
	parser        *parser.Parser
	health        *health.Checker
	auditRepo     *audit.Repository
	enrichClient  *enrich.EnrichmentClient
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// ServerOption configures an optional host-side collaborator on Server.
// Both are genuinely optional: a Server with none of these set still parses
// and renders notes correctly, just without call auditing or AI enrichment.
type ServerOption func(*Server)

// WithAuditRepository records metadata about each parse/render call
// (never the note text or extracted fields) to the given repository.
func WithAuditRepository(repo *audit.Repository) ServerOption {
	return func(s *Server) { s.auditRepo = repo }
}

// WithEnrichmentClient enables the opt-in enrichment step in
// handleParseAndRender: callers that set "enrich": true in the request get
// the client's suggested annotations attached to the response.
func WithEnrichmentClient(c *enrich.EnrichmentClient) ServerOption {
	return func(s *Server) { s.enrichClient = c }
}

// NewServer creates a new HTTP server instance.
func NewServer(configManager *config.Manager, p *parser.Parser, opts ...ServerOption) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(30 * time.Second))
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())

	logger := logrus.New()
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	server := &Server{
		configManager: configManager,
		parser:        p,
		logger:        logger,
		router:        router,
	}

	for _, opt := range opts {
		opt(server)
	}

	checks := []health.Check{
		&health.ReferenceTablesCheck{},
		&health.ParserSmokeCheck{Probe: func(ctx context.Context) error {
			_, err := p.ParseNote(ctx, "Assessment:\n1. Hypertension\n", domain.DefaultOptions())
			return err
		}},
	}
	if server.enrichClient != nil {
		checks = append(checks, &health.CircuitStateCheck{
			ClientName: "ai-enrichment",
			IsOpen:     server.enrichClient.CircuitOpen,
		})
	}
	server.health = health.NewChecker(5*time.Second, checks...)

	server.setupRoutes()
	return server
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/readyz", s.handleReady)

	v1 := s.router.Group("/v1")
	{
		v1.POST("/parse", s.handleParse)
		v1.POST("/render", s.handleRender)
		v1.POST("/parse-and-render", s.handleParseAndRender)
	}
}

// handleHealth reports liveness: the process is up and its dependencies
// (reference tables, parser) are functioning. Unhealthy components return
// 503 so an orchestrator can restart the instance.
func (s *Server) handleHealth(c *gin.Context) {
	status := s.health.Run(c.Request.Context())
	code := http.StatusOK
	if status.Overall == health.StateUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// handleReady reports readiness without re-running the checks, so a tight
// orchestrator poll doesn't force a fresh parser smoke-test on every call.
func (s *Server) handleReady(c *gin.Context) {
	status := s.health.Last()
	code := http.StatusOK
	if status.Overall == health.StateUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

type parseRequest struct {
	Text            string `json:"text" binding:"required"`
	LocaleUnits     string `json:"locale_units,omitempty"`
	IncludeUnmapped bool   `json:"include_unmapped,omitempty"`
	TemplateID      string `json:"template_id,omitempty"`
	Enrich          bool   `json:"enrich,omitempty"`
}

// recordAuditCall best-effort logs a call's metadata (never the note text
// or extracted fields). A nil auditRepo means auditing is disabled; a
// failed write is logged and otherwise doesn't affect the response sent to
// the caller.
func (s *Server) recordAuditCall(ctx context.Context, c *gin.Context, req parseRequest, parsed domain.ParsedNote) {
	if s.auditRepo == nil {
		return
	}

	codes := make([]string, 0, len(parsed.SafetyWarnings))
	for _, w := range parsed.SafetyWarnings {
		codes = append(codes, w.Code)
	}

	rec := &audit.CallRecord{
		RequestID:      c.GetString("correlation_id"),
		TemplateID:     req.TemplateID,
		LocaleUnits:    req.LocaleUnits,
		InputBytes:     len(req.Text),
		WarningCodes:   codes,
		PhaseElapsedMs: parsed.Meta.PhaseTimingMS,
	}
	if err := s.auditRepo.Create(ctx, rec); err != nil {
		s.logger.WithError(err).Warn("Failed to record parse call audit entry")
	}
}

func (req parseRequest) options() domain.Options {
	opts := domain.DefaultOptions()
	if req.LocaleUnits == "si" {
		opts.LocaleUnits = domain.LocaleSI
	}
	opts.IncludeUnmapped = req.IncludeUnmapped
	switch req.TemplateID {
	case "consult":
		opts.TemplateID = domain.TemplateConsult
	case "progress":
		opts.TemplateID = domain.TemplateProgress
	}
	return opts
}

func (s *Server) handleParse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts, err := req.options().Normalize()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed, err := s.parser.ParseNote(c.Request.Context(), req.Text, opts)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	s.recordAuditCall(c.Request.Context(), c, req, parsed)
	c.JSON(http.StatusOK, parsed)
}

func (s *Server) handleRender(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts, err := req.options().Normalize()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed, rendered, err := s.parser.ParseAndRender(c.Request.Context(), req.Text, opts)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	s.recordAuditCall(c.Request.Context(), c, req, parsed)
	c.JSON(http.StatusOK, rendered)
}

func (s *Server) handleParseAndRender(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts, err := req.options().Normalize()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed, rendered, err := s.parser.ParseAndRender(c.Request.Context(), req.Text, opts)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	s.recordAuditCall(c.Request.Context(), c, req, parsed)

	body := gin.H{"parsed_note": parsed, "rendered_note": rendered}
	if req.Enrich && s.enrichClient != nil {
		if result, err := s.enrichClient.Enrich(c.Request.Context(), rendered, parsed.Diagnoses); err != nil {
			s.logger.WithError(err).Warn("Enrichment call failed, returning note without annotations")
		} else {
			body["enrichment"] = result
		}
	}

	c.JSON(http.StatusOK, body)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Request-ID")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

func generateRequestID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
