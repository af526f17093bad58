// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the workspace server.
type Config struct {
	DBPath     string `yaml:"db_path"`     // path to the SQLite workspace file
	ListenAddr string `yaml:"listen_addr"` // HTTP listen address (default ":8080")
	JWTSecret  string `yaml:"jwt_secret"`  // HS256 shared secret for viewer tokens
	LogLevel   string `yaml:"log_level"`   // log level: debug, info, warn, error (default "info")
	Env        string `yaml:"env"`         // environment: "development" (default) or "production"

	// Cascade policy applied when a folder delete does not name one:
	// "reparent" (default) or "delete".
	DeleteCascadeDefault string `yaml:"delete_cascade_default"`

	// Access policy fallbacks for the permission resolver.
	CreatorPermission   string `yaml:"creator_permission"`   // default "admin"
	OwnerlessPermission string `yaml:"ownerless_permission"` // default "admin"

	// Audit retention. Zero disables the pruning job.
	AuditRetentionDays int    `yaml:"audit_retention_days"`
	AuditPruneSchedule string `yaml:"audit_prune_schedule"` // cron spec, default "0 3 * * *"

	// Rate limiting
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`   // sustained requests per second (default 100)
	RateLimitBurst int     `yaml:"rate_limit_burst"` // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"` // allowed origins (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `yaml:"-"`

	// fromEnv records which variables the environment explicitly set, so
	// LoadFile never overrides an operator's env value even when it equals
	// a default.
	fromEnv map[string]bool
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables and applies
// defaults. Production mode turns insecure defaults into fatal errors.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{fromEnv: make(map[string]bool)}
	env := func(key string) string {
		v := os.Getenv(key)
		if v != "" {
			cfg.fromEnv[key] = true
		}
		return v
	}

	cfg.DBPath = env("WORKSPACE_DB_PATH")
	cfg.ListenAddr = env("LISTEN_ADDR")
	cfg.JWTSecret = env("JWT_SECRET")
	cfg.LogLevel = env("LOG_LEVEL")
	cfg.Env = env("ENV")
	cfg.DeleteCascadeDefault = env("DELETE_CASCADE_DEFAULT")
	cfg.CreatorPermission = env("CREATOR_PERMISSION")
	cfg.OwnerlessPermission = env("OWNERLESS_PERMISSION")
	cfg.AuditPruneSchedule = env("AUDIT_PRUNE_SCHEDULE")

	if v := env("AUDIT_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AuditRetentionDays = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays a YAML config file onto cfg. Keys the environment
// explicitly set keep their env value; everything else — including values
// that merely defaulted — yields to the file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if !c.fromEnv["WORKSPACE_DB_PATH"] && file.DBPath != "" {
		c.DBPath = file.DBPath
	}
	if !c.fromEnv["LISTEN_ADDR"] && file.ListenAddr != "" {
		c.ListenAddr = file.ListenAddr
	}
	if !c.fromEnv["JWT_SECRET"] && file.JWTSecret != "" {
		c.JWTSecret = file.JWTSecret
	}
	if !c.fromEnv["LOG_LEVEL"] && file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if !c.fromEnv["DELETE_CASCADE_DEFAULT"] && file.DeleteCascadeDefault != "" {
		c.DeleteCascadeDefault = file.DeleteCascadeDefault
	}
	if !c.fromEnv["AUDIT_RETENTION_DAYS"] && file.AuditRetentionDays != 0 {
		c.AuditRetentionDays = file.AuditRetentionDays
	}
	return c.applyDefaults()
}

func (c *Config) applyDefaults() error {
	if c.DBPath == "" {
		c.DBPath = "lakeboard.sqlite"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DeleteCascadeDefault == "" {
		c.DeleteCascadeDefault = "reparent"
	}
	if c.DeleteCascadeDefault != "reparent" && c.DeleteCascadeDefault != "delete" {
		return fmt.Errorf("DELETE_CASCADE_DEFAULT must be \"reparent\" or \"delete\", got %q", c.DeleteCascadeDefault)
	}
	if c.CreatorPermission == "" {
		c.CreatorPermission = "admin"
	}
	if c.OwnerlessPermission == "" {
		c.OwnerlessPermission = "admin"
	}
	if c.AuditPruneSchedule == "" {
		c.AuditPruneSchedule = "0 3 * * *"
	}
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = 100
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = 200
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	if c.JWTSecret == "" {
		c.JWTSecret = "dev-secret"
		c.Warnings = append(c.Warnings, "JWT_SECRET not set — using insecure default. Set JWT_SECRET in production!")
	}

	// Production mode: insecure defaults are fatal errors.
	if c.IsProduction() {
		if c.JWTSecret == "dev-secret" {
			return fmt.Errorf("JWT_SECRET must be set in production (ENV=production)")
		}
		if len(c.CORSAllowedOrigins) == 1 && c.CORSAllowedOrigins[0] == "*" {
			return fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}
	return nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
