// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Version string

	ZurgURL  string `toml:"zurgUrl" mapstructure:"zurgUrl"`
	Username string `toml:"username" mapstructure:"username"`
	Password string `toml:"password" mapstructure:"password"`

	// CheckInterval is the wait between monitoring cycles, in minutes.
	CheckInterval int `toml:"checkInterval" mapstructure:"checkInterval"`

	LogFile       string `toml:"logFile" mapstructure:"logFile"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	// RateLimitRequests is the number of requests allowed before the client
	// backs off for RateLimitBackoffSeconds. Each request below the threshold
	// still pauses for RateLimitDelaySeconds.
	RateLimitRequests       int     `toml:"rateLimitRequests" mapstructure:"rateLimitRequests"`
	RateLimitDelaySeconds   float64 `toml:"rateLimitDelay" mapstructure:"rateLimitDelay"`
	RateLimitBackoffSeconds float64 `toml:"rateLimitBackoff" mapstructure:"rateLimitBackoff"`

	Verbose bool `toml:"verbose" mapstructure:"verbose"`
	Debug   bool `toml:"debug" mapstructure:"debug"`
	Trace   bool `toml:"trace" mapstructure:"trace"`

	DryRun bool `toml:"dryRun" mapstructure:"dryRun"`

	MetricsEnabled        bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost           string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort           int    `toml:"metricsPort" mapstructure:"metricsPort"`
	MetricsBasicAuthUsers string `toml:"metricsBasicAuthUsers" mapstructure:"metricsBasicAuthUsers"`
}

// Validate checks startup-fatal configuration errors.
func (c *Config) Validate() error {
	if c.CheckInterval < 1 {
		return errors.New("check interval must be at least 1 minute")
	}

	raw := strings.TrimSpace(c.ZurgURL)
	if raw == "" {
		return errors.New("zurg URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid zurg URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid zurg URL %q: scheme must be http or https", raw)
	}

	return nil
}

// CheckIntervalDuration returns the configured inter-cycle wait.
func (c *Config) CheckIntervalDuration() time.Duration {
	return time.Duration(c.CheckInterval) * time.Minute
}

// RateLimitDelay returns the short per-request pause.
func (c *Config) RateLimitDelay() time.Duration {
	return time.Duration(c.RateLimitDelaySeconds * float64(time.Second))
}

// RateLimitBackoff returns the longer pause applied once the request
// threshold is reached.
func (c *Config) RateLimitBackoff() time.Duration {
	return time.Duration(c.RateLimitBackoffSeconds * float64(time.Second))
}

// HasAuth reports whether basic-auth credentials are configured.
func (c *Config) HasAuth() bool {
	return c.Username != "" && c.Password != ""
}
