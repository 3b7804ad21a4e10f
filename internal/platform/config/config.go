// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, snapshot writer) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration shared by the export and serve commands.
type Config struct {

	// Server settings (serve command)
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Source relational store (PostgreSQL, read-only)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// SnapshotRoot is the directory under which versioned snapshots are
	// written and the "current" pointer is published.
	SnapshotRoot string `env:"SNAPSHOT_ROOT" envDefault:"./snapshots"`

	// BaseURL is the public origin of the static site, used for absolute
	// links in sitemap.xml and feed.xml.
	BaseURL string `env:"BASE_URL" envDefault:"https://nijidex.app"`

	// RedisURL, when set, enables publishing the current snapshot version
	// to Redis after each successful export so serving instances cut over
	// without a restart.
	RedisURL string `env:"REDIS_URL"`

	// WorkerCount bounds the parallel normalization workers of an export run.
	WorkerCount int `env:"WORKER_COUNT" envDefault:"4"`

	// MaxDropRate is the sanity ceiling on the share of source rows that may
	// be dropped for missing required fields before a run is failed.
	MaxDropRate float64 `env:"MAX_DROP_RATE" envDefault:"0.5"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the process is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the process is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
