package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/specialistvlad/stepproxy/internal/security"
)

// EnvPrefix is the prefix of every environment variable that overrides Config.
const EnvPrefix = "STEPPROXY_"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkspacePath string `env:"WORKSPACE"` // hcl files
	BuildDir      string `env:"BUILD_DIR"` // working directory of builds
	HistoryDB     string `env:"HISTORY_DB"`

	LogFormat       string `env:"LOG_FORMAT"`
	LogLevel        string `env:"LOG_LEVEL"`
	HealthcheckPort int    `env:"HTTP_PORT"`

	// APIPermissions are the comma separated permissions of HTTP callers.
	APIPermissions string `env:"API_PERMISSIONS"`
	// TrustPermissionsHeader takes caller permissions from the
	// X-Permissions request header instead. Only enable it behind a proxy
	// that authenticates callers and sets the header itself.
	TrustPermissionsHeader bool `env:"TRUST_PERMISSIONS_HEADER"`
}

// ApplyEnv overrides cfg with any STEPPROXY_* variables that are set.
// Unset variables leave the current value alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkspacePath == "" {
		return nil, errors.New("WorkspacePath is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format '%s': must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level '%s': must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	for _, perm := range security.ParsePermissions(cfg.APIPermissions) {
		switch perm {
		case security.Read, security.Build, security.Configure:
		default:
			return nil, fmt.Errorf("invalid API permission '%s': must be 'read', 'build' or 'configure'", perm)
		}
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid http port %d", cfg.HealthcheckPort)
	}

	return &cfg, nil
}
