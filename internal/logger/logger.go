// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/autobrr/zurgmon/internal/domain"
)

// consoleWriter gates console output by verbosity. The rotating file sink
// receives every event regardless of the console level; summary events
// (NoLevel, emitted via log.Log()) always reach the console so check reports
// stay visible at default verbosity.
type consoleWriter struct {
	io.Writer
	minLevel zerolog.Level
}

func (w consoleWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level == zerolog.NoLevel || level >= w.minLevel {
		return w.Writer.Write(p)
	}
	return len(p), nil
}

// Setup configures the global zerolog logger: a rotating file sink that
// always logs at trace level and a console sink filtered by the configured
// verbosity (warnings and errors always shown).
func Setup(cfg *domain.Config) error {
	zerolog.TimeFieldFormat = time.RFC3339

	consoleMin := zerolog.WarnLevel
	switch {
	case cfg.Trace:
		consoleMin = zerolog.TraceLevel
	case cfg.Debug:
		consoleMin = zerolog.DebugLevel
	case cfg.Verbose:
		consoleMin = zerolog.InfoLevel
	}

	console := consoleWriter{
		Writer: zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.DateTime,
		},
		minLevel: consoleMin,
	}

	writers := []io.Writer{console}

	if cfg.LogFile != "" {
		logDir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return errors.Wrapf(err, "could not create log directory %s", logDir)
		}

		maxSize := cfg.LogMaxSize
		if maxSize <= 0 {
			maxSize = 10
		}
		maxBackups := cfg.LogMaxBackups
		if maxBackups <= 0 {
			maxBackups = 10
		}

		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Logger()

	return nil
}
