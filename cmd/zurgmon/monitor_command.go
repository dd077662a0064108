// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/zurgmon/internal/buildinfo"
	"github.com/autobrr/zurgmon/internal/config"
	"github.com/autobrr/zurgmon/internal/logger"
	"github.com/autobrr/zurgmon/internal/metrics"
	"github.com/autobrr/zurgmon/internal/monitor"
	"github.com/autobrr/zurgmon/internal/zurg"
)

func RunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitor loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, false)
		},
	}
}

func CheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a single check cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, true)
		},
	}
}

func runMonitor(cmd *cobra.Command, once bool) error {
	configPath, _ := cmd.Flags().GetString("config")

	appConfig, err := config.New(configPath, cmd.Flags())
	if err != nil {
		return err
	}

	cfg := appConfig.Config
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Setup(cfg); err != nil {
		return err
	}

	log.Info().Msgf("Starting zurgmon %s", buildinfo.Version)
	log.Info().Str("url", cfg.ZurgURL).Msg("Monitoring zurg instance")
	log.Info().Int("minutes", cfg.CheckInterval).Msg("Check interval")
	if cfg.LogFile != "" {
		config.ApplyDirOwnership(filepath.Dir(cfg.LogFile))
		log.Info().Str("path", cfg.LogFile).Msg("Logging to file")
	}
	if configFile := appConfig.ConfigFileUsed(); configFile != "" {
		log.Debug().Str("path", configFile).Msg("Loaded configuration file")
	}
	if cfg.HasAuth() {
		log.Info().Str("username", cfg.Username).Msg("Basic auth enabled")
	}
	if cfg.DryRun {
		log.Warn().Msg("Dry run mode enabled, repairs will not be triggered")
	}

	client := zurg.NewClient(zurg.Config{
		BaseURL:           cfg.ZurgURL,
		Username:          cfg.Username,
		Password:          cfg.Password,
		UserAgent:         buildinfo.UserAgent,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitDelay:    cfg.RateLimitDelay(),
		RateLimitBackoff:  cfg.RateLimitBackoff(),
	})

	serviceCfg := monitor.DefaultConfig()
	serviceCfg.CheckInterval = cfg.CheckIntervalDuration()
	serviceCfg.DryRun = cfg.DryRun

	service := monitor.NewService(serviceCfg, client)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsEnabled {
		manager := metrics.NewMetricsManager(service.Stats())
		server := metrics.NewMetricsServer(manager, cfg.MetricsHost, cfg.MetricsPort, cfg.MetricsBasicAuthUsers)

		go func() {
			if err := server.ListenAndServe(); err != nil {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		defer func() {
			if err := server.Stop(); err != nil {
				log.Error().Err(err).Msg("Failed to stop metrics server")
			}
		}()
	}

	var code int
	if once {
		code = service.RunOnce(ctx)
	} else {
		code = service.Run(ctx)
	}

	if code != 0 {
		os.Exit(code)
	}
	return nil
}
