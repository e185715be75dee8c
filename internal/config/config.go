package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	WCLClientID     string        `env:"WCL_CLIENT_ID"`
	WCLClientSecret string        `env:"WCL_CLIENT_SECRET"`
	WCLTokenURL     string        `env:"WCL_TOKEN_URL" envDefault:"https://www.warcraftlogs.com/oauth/token"`
	WCLAPIURL       string        `env:"WCL_API_URL" envDefault:"https://www.warcraftlogs.com/api/v2/client"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	CacheMaxAge     time.Duration `env:"CACHE_MAX_AGE" envDefault:"6h"`
	DBPath          string        `env:"DB_PATH" envDefault:"wcl.db"`
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

// UpstreamConfigured reports whether both client credentials are present.
// Their absence is a normal operating mode: the service serves cache only.
func (c *Config) UpstreamConfigured() bool {
	return c.WCLClientID != "" && c.WCLClientSecret != ""
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.CacheMaxAge <= 0 {
		return nil, fmt.Errorf("CACHE_MAX_AGE must be positive, got %s", cfg.CacheMaxAge)
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", cfg.UpstreamTimeout)
	}

	if !cfg.UpstreamConfigured() {
		logger.Warn().Msg("WCL_CLIENT_ID / WCL_CLIENT_SECRET not set, serving cached data only")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("cache_max_age", cfg.CacheMaxAge).
		Dur("upstream_timeout", cfg.UpstreamTimeout).
		Bool("upstream_configured", cfg.UpstreamConfigured()).
		Msg("configuration loaded")

	return cfg, nil
}
