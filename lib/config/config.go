// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the foyer daemon configuration.
//
// Configuration comes from a single YAML file specified by:
//   - the FOYER_CONFIG environment variable, or
//   - the --config flag passed to foyerd
//
// There are no fallbacks or automatic discovery, and environment
// variables do not override file values. This keeps configuration
// deterministic and auditable, which matters for a binary that edits
// another application's credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the foyer daemon configuration.
type Config struct {
	// Listen is the TCP address the console binds (e.g., ":9443").
	Listen string `yaml:"listen"`

	// State configures where durable state lives.
	State StateConfig `yaml:"state"`

	// Session configures token lifetime.
	Session SessionConfig `yaml:"session"`

	// Reload configures the supervisor notification.
	Reload ReloadConfig `yaml:"reload"`
}

// StateConfig locates the three durable artifacts.
type StateConfig struct {
	// EnvFile is the host application's environment file, the
	// file the console exists to edit. Required; its location is
	// owned by the host application's deployment, so there is no
	// safe default to guess.
	EnvFile string `yaml:"env_file"`

	// AdminFile is the administrator record. Default
	// /etc/foyer/admin.json.
	AdminFile string `yaml:"admin_file"`

	// SetupLock is the provisioning completion marker. Default
	// /etc/foyer/setup.lock.
	SetupLock string `yaml:"setup_lock"`
}

// SessionConfig controls session tokens. Durations are Go duration
// strings ("24h", "30m").
type SessionConfig struct {
	// TTL is how long a session token stays valid. Default 24h.
	TTL string `yaml:"ttl"`

	// SweepInterval is how often expired sessions are purged.
	// Default 10m.
	SweepInterval string `yaml:"sweep_interval"`
}

// ReloadConfig controls the post-mutation supervisor notification.
type ReloadConfig struct {
	// Command is the supervisor argv (e.g., ["pm2", "restart",
	// "all"]). Empty disables the notification.
	Command []string `yaml:"command"`

	// Timeout bounds the command. Default 60s.
	Timeout string `yaml:"timeout"`
}

// Default returns the built-in defaults. EnvFile is deliberately
// absent; it is required.
func Default() *Config {
	return &Config{
		Listen: ":9443",
		State: StateConfig{
			AdminFile: "/etc/foyer/admin.json",
			SetupLock: "/etc/foyer/setup.lock",
		},
		Session: SessionConfig{
			TTL:           "24h",
			SweepInterval: "10m",
		},
		Reload: ReloadConfig{
			Timeout: "60s",
		},
	}
}

// Load loads configuration from the path in FOYER_CONFIG. Fails when
// the variable is unset; there is no discovery.
func Load() (*Config, error) {
	path := os.Getenv("FOYER_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("FOYER_CONFIG environment variable not set; " +
			"set it to the path of your foyer.yaml, or use the --config flag")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from an explicit path, merging over
// the defaults and validating the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks required fields and duration syntax.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.State.EnvFile == "" {
		return fmt.Errorf("state.env_file is required")
	}
	if c.State.AdminFile == "" {
		return fmt.Errorf("state.admin_file is required")
	}
	if c.State.SetupLock == "" {
		return fmt.Errorf("state.setup_lock is required")
	}
	if _, err := time.ParseDuration(c.Session.TTL); err != nil {
		return fmt.Errorf("session.ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.Session.SweepInterval); err != nil {
		return fmt.Errorf("session.sweep_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.Reload.Timeout); err != nil {
		return fmt.Errorf("reload.timeout: %w", err)
	}
	return nil
}

// SessionTTL returns the parsed session.ttl. Only meaningful after
// Validate has passed.
func (c *Config) SessionTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Session.TTL)
	return ttl
}

// SweepInterval returns the parsed session.sweep_interval.
func (c *Config) SweepInterval() time.Duration {
	interval, _ := time.ParseDuration(c.Session.SweepInterval)
	return interval
}

// ReloadTimeout returns the parsed reload.timeout.
func (c *Config) ReloadTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Reload.Timeout)
	return timeout
}
