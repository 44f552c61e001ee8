// Package config loads service configuration from a TOML file with
// environment variable overrides for deploy-time settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full service configuration.
type Config struct {
	Server Server `toml:"server"`
	OSRM   OSRM   `toml:"osrm"`
	AI     AI     `toml:"ai"`
	Data   Data   `toml:"data"`
	Graph  Graph  `toml:"graph"`
	Nav    Nav    `toml:"nav"`
}

type Server struct {
	Addr       string `toml:"addr"`
	CORSOrigin string `toml:"cors_origin"`
}

type OSRM struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type AI struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type Data struct {
	Dir string `toml:"dir"`
}

type Graph struct {
	// Snapshot is a road-graph JSON file produced by graphimport. Empty
	// selects the embedded Hualien network.
	Snapshot string `toml:"snapshot"`
}

type Nav struct {
	SweepMinutes         int `toml:"sweep_minutes"`
	MaxSessionAgeMinutes int `toml:"max_session_age_minutes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{Addr: ":3000", CORSOrigin: "*"},
		OSRM:   OSRM{TimeoutSeconds: 10},
		AI:     AI{TimeoutSeconds: 15},
		Data:   Data{Dir: "data"},
		Nav:    Nav{SweepMinutes: 5, MaxSessionAgeMinutes: 30},
	}
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. A missing file is not an error; an empty path
// skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv maps the deploy-time environment variables onto the config.
func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if url := os.Getenv("OSRM_URL"); url != "" {
		c.OSRM.BaseURL = url
	}
	if url := os.Getenv("AI_URL"); url != "" {
		c.AI.BaseURL = url
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		c.Data.Dir = dir
	}
}

// OSRMTimeout returns the router timeout as a duration.
func (c Config) OSRMTimeout() time.Duration {
	return time.Duration(c.OSRM.TimeoutSeconds) * time.Second
}

// AITimeout returns the AI client timeout as a duration.
func (c Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// SweepInterval returns the session sweep interval as a duration.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.Nav.SweepMinutes) * time.Minute
}

// MaxSessionAge returns the session expiry age as a duration.
func (c Config) MaxSessionAge() time.Duration {
	return time.Duration(c.Nav.MaxSessionAgeMinutes) * time.Minute
}
