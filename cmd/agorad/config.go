package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/agora/internal/engine"
)

// daemonConfig wires the whole daemon. Everything has a default so the
// daemon runs from an empty config file; env vars override the file for
// deployment-specific values.
type daemonConfig struct {
	Seed        int64  `yaml:"seed"`
	DBPath      string `yaml:"db_path"`
	CatalogPath string `yaml:"catalog_path"`
	Port        int    `yaml:"port"`
	AdminKey    string `yaml:"admin_key"`

	// Authority selection is explicit and resolved once at startup.
	Authority    bool   `yaml:"authority"`
	AuthorityURL string `yaml:"authority_url"` // ws://host:port/ws/mesh, replicas only

	// Real minutes per simulated day for standalone operation. Embedded
	// hosts drive day transitions from their own lifecycle instead.
	DayMinutes int `yaml:"day_minutes"`

	Economy engine.Config `yaml:"economy"`
}

func defaultConfig() daemonConfig {
	return daemonConfig{
		Seed:        42,
		DBPath:      "data/agora.db",
		CatalogPath: "catalog.yaml",
		Port:        8460,
		Authority:   true,
		DayMinutes:  10,
		Economy:     engine.DefaultConfig(),
	}
}

// DayInterval returns the real-time length of a simulated day.
func (c daemonConfig) DayInterval() time.Duration {
	return time.Duration(c.DayMinutes) * time.Minute
}

// loadConfig reads the YAML config file, falling back to defaults when the
// file is absent, then applies env overrides.
func loadConfig(path string) (daemonConfig, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("AGORA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("AGORA_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("AGORA_ADMIN_KEY"); v != "" {
		cfg.AdminKey = v
	}
	if v := os.Getenv("AGORA_AUTHORITY_URL"); v != "" {
		cfg.AuthorityURL = v
		cfg.Authority = false
	}
	if v := os.Getenv("AGORA_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}

	return cfg, nil
}
