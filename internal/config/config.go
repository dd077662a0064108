// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/autobrr/zurgmon/internal/buildinfo"
	"github.com/autobrr/zurgmon/internal/domain"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// ZURGMON__ZURG_URL.
const EnvPrefix = "ZURGMON__"

// AppConfig wraps the resolved runtime configuration.
type AppConfig struct {
	Config *domain.Config

	viper *viper.Viper
}

// New resolves configuration from, in priority order, CLI flags, environment,
// an optional TOML config file, and built-in defaults. configPath may point at
// a file or a directory; when empty the standard locations are searched.
func New(configPath string, flags *pflag.FlagSet) (*AppConfig, error) {
	c := &AppConfig{viper: viper.New()}

	c.defaults()

	c.bindEnv()

	if err := c.readConfig(configPath); err != nil {
		return nil, err
	}

	if flags != nil {
		c.bindFlags(flags)
	}

	cfg := &domain.Config{Version: buildinfo.Version}
	if err := c.viper.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal config")
	}

	// Trace implies debug.
	if cfg.Trace {
		cfg.Debug = true
	}

	c.Config = cfg
	return c, nil
}

func (c *AppConfig) defaults() {
	c.viper.SetDefault("zurgUrl", "http://localhost:9999")
	c.viper.SetDefault("username", "")
	c.viper.SetDefault("password", "")
	c.viper.SetDefault("checkInterval", 30)
	c.viper.SetDefault("logFile", filepath.Join("logs", "zurgmon.log"))
	c.viper.SetDefault("logMaxSize", 10)
	c.viper.SetDefault("logMaxBackups", 10)
	c.viper.SetDefault("rateLimitRequests", 10)
	c.viper.SetDefault("rateLimitDelay", 0.5)
	c.viper.SetDefault("rateLimitBackoff", 5.0)
	c.viper.SetDefault("verbose", false)
	c.viper.SetDefault("debug", false)
	c.viper.SetDefault("trace", false)
	c.viper.SetDefault("dryRun", false)
	c.viper.SetDefault("metricsEnabled", false)
	c.viper.SetDefault("metricsHost", "127.0.0.1")
	c.viper.SetDefault("metricsPort", 9998)
	c.viper.SetDefault("metricsBasicAuthUsers", "")
}

// bindEnv wires ZURGMON__* environment variables to their config keys.
func (c *AppConfig) bindEnv() {
	for key, env := range map[string]string{
		"zurgUrl":               "ZURG_URL",
		"username":              "USERNAME",
		"password":              "PASSWORD",
		"checkInterval":         "CHECK_INTERVAL",
		"logFile":               "LOG_FILE",
		"logMaxSize":            "LOG_MAX_SIZE",
		"logMaxBackups":         "LOG_MAX_BACKUPS",
		"rateLimitRequests":     "RATE_LIMIT_REQUESTS",
		"rateLimitDelay":        "RATE_LIMIT_DELAY",
		"rateLimitBackoff":      "RATE_LIMIT_BACKOFF",
		"verbose":               "VERBOSE",
		"debug":                 "DEBUG",
		"trace":                 "TRACE",
		"dryRun":                "DRY_RUN",
		"metricsEnabled":        "METRICS_ENABLED",
		"metricsHost":           "METRICS_HOST",
		"metricsPort":           "METRICS_PORT",
		"metricsBasicAuthUsers": "METRICS_BASIC_AUTH_USERS",
	} {
		_ = c.viper.BindEnv(key, EnvPrefix+env)
	}
}

func (c *AppConfig) readConfig(configPath string) error {
	c.viper.SetConfigType("toml")

	if configPath != "" {
		info, err := os.Stat(configPath)
		if err != nil {
			return errors.Wrapf(err, "could not read config path %s", configPath)
		}
		if info.IsDir() {
			c.viper.SetConfigName("config")
			c.viper.AddConfigPath(configPath)
		} else {
			c.viper.SetConfigFile(configPath)
		}

		if err := c.viper.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "could not load config from %s", configPath)
		}
		return nil
	}

	c.viper.SetConfigName("config")
	c.viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		c.viper.AddConfigPath(filepath.Join(home, ".config", "zurgmon"))
	}
	c.viper.AddConfigPath("/etc/zurgmon")

	if err := c.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Defaults plus env and flags are enough to run.
			return nil
		}
		return errors.Wrap(err, "could not load config file")
	}
	return nil
}

// bindFlags lets explicitly set CLI flags override file and env values.
func (c *AppConfig) bindFlags(flags *pflag.FlagSet) {
	bindings := map[string]string{
		"zurg-url":       "zurgUrl",
		"username":       "username",
		"password":       "password",
		"check-interval": "checkInterval",
		"log-file":       "logFile",
		"rate-limit":     "rateLimitRequests",
		"verbose":        "verbose",
		"debug":          "debug",
		"trace":          "trace",
		"dry-run":        "dryRun",
	}

	for flagName, key := range bindings {
		flag := flags.Lookup(flagName)
		if flag == nil || !flag.Changed {
			continue
		}

		switch flag.Value.Type() {
		case "bool":
			if v, err := flags.GetBool(flagName); err == nil {
				c.viper.Set(key, v)
			}
		case "int":
			if v, err := flags.GetInt(flagName); err == nil {
				c.viper.Set(key, v)
			}
		default:
			c.viper.Set(key, flag.Value.String())
		}
	}
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func (c *AppConfig) ConfigFileUsed() string {
	return c.viper.ConfigFileUsed()
}

// ApplyDirOwnership chowns dir to the PUID/PGID env values when both are set.
// Intended for container setups; failure is only worth a warning.
func ApplyDirOwnership(dir string) {
	puid, pgid, ok := lookupIDs()
	if !ok {
		return
	}

	if err := os.Chown(dir, puid, pgid); err != nil {
		log.Warn().Err(err).Str("dir", dir).Int("puid", puid).Int("pgid", pgid).Msg("could not apply PUID/PGID ownership")
		return
	}
	log.Debug().Str("dir", dir).Int("puid", puid).Int("pgid", pgid).Msg("applied PUID/PGID ownership")
}
