package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/clinacuity/clinical-note-parser/internal/api"
	"github.com/clinacuity/clinical-note-parser/internal/audit"
	"github.com/clinacuity/clinical-note-parser/internal/config"
	"github.com/clinacuity/clinical-note-parser/internal/database"
	"github.com/clinacuity/clinical-note-parser/internal/enrich"
	"github.com/clinacuity/clinical-note-parser/internal/parser"
	"github.com/clinacuity/clinical-note-parser/internal/reference"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	log.Printf("Starting clinical note parser API on %s:%d", cfg.Server.Host, cfg.Server.Port)

	tables, err := reference.Load(cfg.Data.ReferenceDir)
	if err != nil {
		log.Fatalf("Failed to load reference tables: %v", err)
	}

	p := parser.New(tables)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var opts []api.ServerOption

	if cfg.Audit.Enabled {
		auditRepo, pool := mustAuditRepository(ctx, cfg.Audit.DatabaseURL, cfg.Audit.MigrationsPath)
		defer pool.Close()
		opts = append(opts, api.WithAuditRepository(auditRepo))
	}

	if cfg.Enrich.Enabled {
		client := enrich.NewEnrichmentClient(enrich.ClientConfig{
			BaseURL: cfg.Enrich.BaseURL,
			APIKey:  cfg.Enrich.APIKey,
			Timeout: cfg.Enrich.Timeout,
		})
		opts = append(opts, api.WithEnrichmentClient(client))
	}

	server := api.NewServer(configManager, p, opts...)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Println("Server stopped")
}

// mustAuditRepository connects to the audit database, runs any pending
// migrations, and returns a repository backed by the connection pool. The
// caller owns the pool and must close it on shutdown.
func mustAuditRepository(ctx context.Context, databaseURL, migrationsPath string) (*audit.Repository, *pgxpool.Pool) {
	logger := logrus.New()

	migrationCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	runner, err := database.NewMigrationRunner(databaseURL, migrationsPath, logger)
	if err != nil {
		log.Fatalf("Failed to create audit migration runner: %v", err)
	}
	if err := runner.Up(migrationCtx); err != nil {
		log.Fatalf("Failed to run audit migrations: %v", err)
	}
	if err := runner.Close(); err != nil {
		log.Printf("Warning: failed to close audit migration runner: %v", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to audit database: %v", err)
	}

	return audit.NewRepository(pool, logger), pool
}
