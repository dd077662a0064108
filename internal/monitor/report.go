// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package monitor

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Summary output is emitted without a level so it always reaches the
// console regardless of configured verbosity, while still landing in the
// rotating log file.

const bannerWidth = 72

func logBanner(text string) {
	line := strings.Repeat("=", bannerWidth)
	log.Log().Msg("")
	log.Log().Msg(line)
	log.Log().Msg("  " + text)
	log.Log().Msg(line)
	log.Log().Msg("")
}

func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// logCheckSummary reports one completed cycle: current counts, the torrents
// involved and, when a previous cycle exists, the reconciliation deltas.
func logCheckSummary(current CheckStats, deltas Deltas, hasPrevious bool) {
	logBanner("CHECK SUMMARY")

	if current.TotalTorrents > 0 {
		log.Log().
			Int("total", current.TotalTorrents).
			Msgf("torrent statistics: %d total, %d OK (%.2f%%), %d broken (%.2f%%), %d under repair (%.2f%%)",
				current.TotalTorrents,
				current.OKTorrents, percent(current.OKTorrents, current.TotalTorrents),
				current.BrokenFound, percent(current.BrokenFound, current.TotalTorrents),
				current.UnderRepairFound, percent(current.UnderRepairFound, current.TotalTorrents))
	}

	log.Log().
		Int("broken", current.BrokenFound).
		Int("underRepair", current.UnderRepairFound).
		Int("repairsTriggered", current.RepairsTriggered).
		Msg("current check results")

	if len(current.BrokenNames) > 0 {
		log.Log().Msg("broken torrents:")
		for _, name := range current.BrokenNames {
			log.Log().Msg("  - " + name)
		}
	}
	if len(current.UnderRepairNames) > 0 {
		log.Log().Msg("under repair:")
		for _, name := range current.UnderRepairNames {
			log.Log().Msg("  - " + name)
		}
	}

	if hasPrevious {
		log.Log().
			Int("repaired", deltas.Repaired).
			Int("movedToRepair", deltas.MovedToRepair).
			Int("stillBroken", deltas.StillBroken).
			Int("stillUnderRepair", deltas.StillUnderRepair).
			Int("newBroken", deltas.NewBroken).
			Msg("comparison with previous check")

		if deltas.HasSuccessRate {
			log.Log().Msgf("repair success rate: %.1f%%", deltas.SuccessRate)
		}
	}

	log.Log().Msg(strings.Repeat("=", bannerWidth))
}

// logOverallSummary reports the process-lifetime totals, used at shutdown
// and after single-shot runs.
func logOverallSummary(snapshot Snapshot) {
	logBanner("OVERALL STATISTICS")

	log.Log().Msgf("total checks performed:    %d", snapshot.TotalChecks)
	log.Log().Msgf("total broken found:        %d", snapshot.BrokenFound)
	log.Log().Msgf("total under repair found:  %d", snapshot.UnderRepairFound)
	log.Log().Msgf("total repairs triggered:   %d", snapshot.RepairsTriggered)
	log.Log().Msgf("last check:                %s", formatTimestamp(snapshot.LastCheck))
	log.Log().Msgf("last broken found:         %s", formatTimestamp(snapshot.LastBrokenFound))

	log.Log().Msg(strings.Repeat("=", bannerWidth))
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(time.DateTime)
}
