// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/zurgmon/internal/domain"
)

func TestConsoleWriterFiltering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		minLevel zerolog.Level
		suppress []zerolog.Level
		pass     []zerolog.Level
	}{
		{
			name:     "default shows warnings and above",
			minLevel: zerolog.WarnLevel,
			suppress: []zerolog.Level{zerolog.TraceLevel, zerolog.DebugLevel, zerolog.InfoLevel},
			pass:     []zerolog.Level{zerolog.WarnLevel, zerolog.ErrorLevel, zerolog.NoLevel},
		},
		{
			name:     "verbose adds info",
			minLevel: zerolog.InfoLevel,
			suppress: []zerolog.Level{zerolog.TraceLevel, zerolog.DebugLevel},
			pass:     []zerolog.Level{zerolog.InfoLevel, zerolog.WarnLevel, zerolog.NoLevel},
		},
		{
			name:     "trace passes everything",
			minLevel: zerolog.TraceLevel,
			pass:     []zerolog.Level{zerolog.TraceLevel, zerolog.DebugLevel, zerolog.InfoLevel, zerolog.NoLevel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, level := range tt.suppress {
				var buf bytes.Buffer
				w := consoleWriter{Writer: &buf, minLevel: tt.minLevel}
				n, err := w.WriteLevel(level, []byte("x"))
				require.NoError(t, err)
				assert.Equal(t, 1, n, "suppressed writes still report full length")
				assert.Zero(t, buf.Len(), "level %s should be suppressed", level)
			}
			for _, level := range tt.pass {
				var buf bytes.Buffer
				w := consoleWriter{Writer: &buf, minLevel: tt.minLevel}
				_, err := w.WriteLevel(level, []byte("x"))
				require.NoError(t, err)
				assert.Equal(t, 1, buf.Len(), "level %s should pass", level)
			}
		})
	}
}

func TestSetupCreatesLogDirectory(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "zurgmon.log")

	cfg := &domain.Config{LogFile: logFile, LogMaxSize: 1, LogMaxBackups: 1}
	require.NoError(t, Setup(cfg))

	assert.DirExists(t, filepath.Dir(logFile))
}
