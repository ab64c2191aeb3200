// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob of the server. All fields have working
// defaults so a bare `server` starts locally; production deployments override
// the secrets.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `env:"ADDR" envDefault:":8001"`

	// DBPath is the SQLite database file path.
	DBPath string `env:"DB_PATH" envDefault:"exitordie.db"`

	// AdminAPIKey gates POST /api/admin/content via the X-API-Key header.
	AdminAPIKey string `env:"ADMIN_API_KEY" envDefault:"admin-secret-key"`

	// DailySecret keys the HMAC that derives the deterministic daily seed.
	DailySecret string `env:"DAILY_SECRET" envDefault:"daily-seed-secret"`

	// CORSOrigins lists allowed origins; entries may carry a single `*`
	// wildcard in the host part (https://*.itch.io).
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"https://*.itch.io,https://*.vercel.app,http://localhost:3000"`

	// RequestTimeout bounds each request's total handling time.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`

	// ContentPackFile, when set, is a YAML pack loaded and activated at
	// startup, replacing whatever pack is currently active.
	ContentPackFile string `env:"CONTENT_PACK_FILE"`
}

// Load parses the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
