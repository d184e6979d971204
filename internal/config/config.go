// Package config loads runtime configuration for the clinical-note-parser
// servers (HTTP API and MCP) from a config file, environment variables, and
// built-in defaults, following the teacher's viper-based layering.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig configures the HTTP API listener.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DataConfig locates the reference tables (labs, diagnosis allow/blocklists).
type DataConfig struct {
	ReferenceDir string `mapstructure:"reference_dir"`
}

// CacheConfig holds cache settings. No component reads it: the module's only
// cache, the lite MCP server's parse-result cache, is sized from LiteConfig.
type CacheConfig struct {
	RedisURL      string        `mapstructure:"redis_url"`
	MemoryTTL     time.Duration `mapstructure:"memory_ttl"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
	MaxMemorySize int           `mapstructure:"max_memory_size"`
}

// AuditConfig configures the parse-call audit log.
type AuditConfig struct {
	DatabaseURL     string `mapstructure:"database_url"`
	MigrationsPath  string `mapstructure:"migrations_path"`
	Enabled         bool   `mapstructure:"enabled"`
}

// EnrichConfig configures the optional AI enrichment collaborator called
// from ParseAndRender when a caller opts in. The search and Q&A clients in
// internal/enrich are not configured here; no API route or MCP tool calls
// them.
type EnrichConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig configures logrus output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Enrich  EnrichConfig  `mapstructure:"enrich"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Manager loads and validates Config using viper.
type Manager struct {
	config *Config
}

// NewManager creates a configuration manager, reading CLINACUITY_-prefixed
// environment variables, config.yaml (if present), and defaults, in that
// precedence.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/clinical-note-parser/")

	viper.SetEnvPrefix("CLINACUITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("data.reference_dir", "data")

	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.memory_ttl", "15m")
	viper.SetDefault("cache.redis_ttl", "24h")
	viper.SetDefault("cache.max_memory_size", 1000)

	viper.SetDefault("audit.database_url", "")
	viper.SetDefault("audit.migrations_path", "internal/audit/migrations")
	viper.SetDefault("audit.enabled", false)

	viper.SetDefault("enrich.enabled", false)
	viper.SetDefault("enrich.base_url", "")
	viper.SetDefault("enrich.api_key", "")
	viper.SetDefault("enrich.timeout", "30s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *Config { return m.config }

// GetServerConfig returns the HTTP server configuration.
func (m *Manager) GetServerConfig() *ServerConfig { return &m.config.Server }

// Reload re-reads configuration from all sources.
func (m *Manager) Reload() error { return m.loadConfig() }

// Validate checks the configuration for obviously invalid values.
func (m *Manager) Validate() error {
	cfg := m.config

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Data.ReferenceDir == "" {
		return fmt.Errorf("data reference_dir is required")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	if cfg.Audit.Enabled && cfg.Audit.DatabaseURL == "" {
		return fmt.Errorf("audit.database_url is required when audit.enabled is true")
	}

	if cfg.Enrich.Enabled && cfg.Enrich.BaseURL == "" {
		return fmt.Errorf("enrich.base_url is required when enrich.enabled is true")
	}

	return nil
}

// IsProduction returns true if running in production mode.
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode.
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
