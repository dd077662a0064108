// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/autobrr/zurgmon/internal/monitor"
)

type MonitorCollector struct {
	stats *monitor.Stats

	torrentsTotalDesc       *prometheus.Desc
	torrentsBrokenDesc      *prometheus.Desc
	torrentsUnderRepairDesc *prometheus.Desc
	torrentsOKDesc          *prometheus.Desc
	checksTotalDesc         *prometheus.Desc
	brokenFoundTotalDesc    *prometheus.Desc
	underRepairTotalDesc    *prometheus.Desc
	repairsTriggeredDesc    *prometheus.Desc
	lastCheckDesc           *prometheus.Desc
	lastBrokenFoundDesc     *prometheus.Desc
}

func NewMonitorCollector(stats *monitor.Stats) *MonitorCollector {
	return &MonitorCollector{
		stats: stats,

		torrentsTotalDesc: prometheus.NewDesc(
			"zurgmon_torrents_total",
			"Total number of torrents seen in the last check",
			nil,
			nil,
		),
		torrentsBrokenDesc: prometheus.NewDesc(
			"zurgmon_torrents_broken",
			"Number of broken torrents in the last check",
			nil,
			nil,
		),
		torrentsUnderRepairDesc: prometheus.NewDesc(
			"zurgmon_torrents_under_repair",
			"Number of torrents under repair in the last check",
			nil,
			nil,
		),
		torrentsOKDesc: prometheus.NewDesc(
			"zurgmon_torrents_ok",
			"Number of healthy torrents in the last check",
			nil,
			nil,
		),
		checksTotalDesc: prometheus.NewDesc(
			"zurgmon_checks_total",
			"Total number of check cycles performed",
			nil,
			nil,
		),
		brokenFoundTotalDesc: prometheus.NewDesc(
			"zurgmon_broken_found_total",
			"Cumulative number of broken torrents found across all checks",
			nil,
			nil,
		),
		underRepairTotalDesc: prometheus.NewDesc(
			"zurgmon_under_repair_found_total",
			"Cumulative number of under-repair torrents found across all checks",
			nil,
			nil,
		),
		repairsTriggeredDesc: prometheus.NewDesc(
			"zurgmon_repairs_triggered_total",
			"Cumulative number of repairs triggered across all checks",
			nil,
			nil,
		),
		lastCheckDesc: prometheus.NewDesc(
			"zurgmon_last_check_timestamp_seconds",
			"Unix timestamp of the last completed check",
			nil,
			nil,
		),
		lastBrokenFoundDesc: prometheus.NewDesc(
			"zurgmon_last_broken_found_timestamp_seconds",
			"Unix timestamp of the last check that found broken torrents",
			nil,
			nil,
		),
	}
}

func (c *MonitorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.torrentsTotalDesc
	ch <- c.torrentsBrokenDesc
	ch <- c.torrentsUnderRepairDesc
	ch <- c.torrentsOKDesc
	ch <- c.checksTotalDesc
	ch <- c.brokenFoundTotalDesc
	ch <- c.underRepairTotalDesc
	ch <- c.repairsTriggeredDesc
	ch <- c.lastCheckDesc
	ch <- c.lastBrokenFoundDesc
}

func (c *MonitorCollector) Collect(ch chan<- prometheus.Metric) {
	if c.stats == nil {
		return
	}

	snapshot := c.stats.Snapshot()

	ch <- prometheus.MustNewConstMetric(
		c.torrentsTotalDesc,
		prometheus.GaugeValue,
		float64(snapshot.Current.TotalTorrents),
	)
	ch <- prometheus.MustNewConstMetric(
		c.torrentsBrokenDesc,
		prometheus.GaugeValue,
		float64(snapshot.Current.BrokenFound),
	)
	ch <- prometheus.MustNewConstMetric(
		c.torrentsUnderRepairDesc,
		prometheus.GaugeValue,
		float64(snapshot.Current.UnderRepairFound),
	)
	ch <- prometheus.MustNewConstMetric(
		c.torrentsOKDesc,
		prometheus.GaugeValue,
		float64(snapshot.Current.OKTorrents),
	)
	ch <- prometheus.MustNewConstMetric(
		c.checksTotalDesc,
		prometheus.CounterValue,
		float64(snapshot.TotalChecks),
	)
	ch <- prometheus.MustNewConstMetric(
		c.brokenFoundTotalDesc,
		prometheus.CounterValue,
		float64(snapshot.BrokenFound),
	)
	ch <- prometheus.MustNewConstMetric(
		c.underRepairTotalDesc,
		prometheus.CounterValue,
		float64(snapshot.UnderRepairFound),
	)
	ch <- prometheus.MustNewConstMetric(
		c.repairsTriggeredDesc,
		prometheus.CounterValue,
		float64(snapshot.RepairsTriggered),
	)

	if snapshot.LastCheck != nil {
		ch <- prometheus.MustNewConstMetric(
			c.lastCheckDesc,
			prometheus.GaugeValue,
			float64(snapshot.LastCheck.Unix()),
		)
	}
	if snapshot.LastBrokenFound != nil {
		ch <- prometheus.MustNewConstMetric(
			c.lastBrokenFoundDesc,
			prometheus.GaugeValue,
			float64(snapshot.LastBrokenFound.Unix()),
		)
	}
}
