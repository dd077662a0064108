// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/zurgmon/internal/monitor"
)

type Manager struct {
	registry         *prometheus.Registry
	monitorCollector *MonitorCollector
	stats            *monitor.Stats
}

func NewMetricsManager(stats *monitor.Stats) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	monitorCollector := NewMonitorCollector(stats)
	registry.MustRegister(monitorCollector)

	log.Info().Msg("Metrics manager initialized with monitor collector")

	return &Manager{
		registry:         registry,
		monitorCollector: monitorCollector,
		stats:            stats,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) Stats() *monitor.Stats {
	return m.stats
}
