// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/zurgmon/internal/zurg"
)

// Fetcher is the zurg client surface the monitor depends on.
type Fetcher interface {
	TestConnection(ctx context.Context) bool
	TorrentsByState(ctx context.Context, state zurg.TorrentState) ([]zurg.Torrent, error)
	TotalTorrents(ctx context.Context) (int, error)
	TriggerRepair(ctx context.Context, hash string) error
}

// Config controls the check cadence and repair behavior.
type Config struct {
	CheckInterval time.Duration
	DryRun        bool

	// TriggerPause is the fixed wait after each repair trigger, independent
	// of the client's rate limiter, to keep zurg's repair subsystem from
	// being burst.
	TriggerPause time.Duration
}

// DefaultConfig returns sane defaults.
func DefaultConfig() Config {
	return Config{
		CheckInterval: 30 * time.Minute,
		TriggerPause:  500 * time.Millisecond,
	}
}

// Service runs check-reconcile-trigger cycles against a zurg instance,
// either once or on a fixed interval. Everything inside a cycle is
// sequential; the only cancellation point is the inter-cycle wait.
type Service struct {
	cfg    Config
	client Fetcher
	stats  *Stats

	sleep func(time.Duration)
}

// NewService constructs a Service.
func NewService(cfg Config, client Fetcher) *Service {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultConfig().CheckInterval
	}
	if cfg.TriggerPause <= 0 {
		cfg.TriggerPause = DefaultConfig().TriggerPause
	}

	return &Service{
		cfg:    cfg,
		client: client,
		stats:  NewStats(),
		sleep:  time.Sleep,
	}
}

// Stats exposes the aggregate statistics for the metrics and status
// surfaces.
func (s *Service) Stats() *Stats {
	return s.stats
}

// RunOnce performs the connectivity probe and a single cycle. Returns the
// process exit code.
func (s *Service) RunOnce(ctx context.Context) int {
	if !s.client.TestConnection(ctx) {
		log.Error().Msg("cannot connect to zurg, exiting")
		return 1
	}

	log.Info().Msg("running in single-check mode")
	s.performCheck(ctx)

	logOverallSummary(s.stats.Snapshot())
	return 0
}

// Run performs the connectivity probe and then loops until ctx is
// cancelled, emitting the overall statistics on the way out. Returns the
// process exit code.
func (s *Service) Run(ctx context.Context) int {
	if !s.client.TestConnection(ctx) {
		log.Error().Msg("cannot connect to zurg, exiting")
		return 1
	}

	log.Log().Msg("starting continuous monitoring loop (press Ctrl+C to stop)")

	for {
		s.performCheck(ctx)

		log.Log().Dur("interval", s.cfg.CheckInterval).Msgf("next check in %s", s.cfg.CheckInterval)

		timer := time.NewTimer(s.cfg.CheckInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Warn().Msg("monitoring loop interrupted")
			logOverallSummary(s.stats.Snapshot())
			return 0
		case <-timer.C:
		}
	}
}

// performCheck runs one full cycle: fetch both category listings, record
// observations, trigger repairs and commit the previous-cycle snapshot.
func (s *Service) performCheck(ctx context.Context) {
	log.Info().Msg("starting torrent status check")

	s.stats.StartCycle()

	total, err := s.client.TotalTorrents(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch torrent totals")
		total = 0
	}

	broken, brokenErr := s.client.TorrentsByState(ctx, zurg.StateBroken)
	underRepair, underRepairErr := s.client.TorrentsByState(ctx, zurg.StateUnderRepair)

	if brokenErr != nil && underRepairErr != nil {
		log.Error().
			AnErr("brokenErr", brokenErr).
			AnErr("underRepairErr", underRepairErr).
			Msg("failed to retrieve torrent status, both listing fetches failed")
		s.stats.RecordAbortedCycle()
		return
	}

	if brokenErr != nil {
		log.Warn().Err(brokenErr).Msg("failed to fetch broken torrents, continuing with under repair check")
		broken = nil
	}
	if underRepairErr != nil {
		log.Warn().Err(underRepairErr).Msg("failed to fetch under repair torrents, continuing with broken check")
		underRepair = nil
	}

	s.stats.RecordObservations(broken, underRepair, total)

	log.Info().Int("count", len(broken)).Msg("broken torrents found")
	log.Info().Int("count", len(underRepair)).Msg("under repair torrents found")

	for _, torrent := range broken {
		log.Warn().Str("hash", torrent.Hash).Str("name", torrent.Name).Msg("broken torrent")
	}
	for _, torrent := range underRepair {
		log.Info().Str("hash", torrent.Hash).Str("name", torrent.Name).Msg("torrent under repair")
	}

	current := s.stats.Current()
	previous := s.stats.Previous()
	deltas := Reconcile(current.BrokenHashes, current.UnderRepairHashes, previous)
	hasPrevious := len(previous.Triggered) > 0

	if len(broken) == 0 && len(underRepair) == 0 {
		log.Info().Msg("no broken or under repair torrents found, library is healthy")
		logCheckSummary(current, deltas, hasPrevious)
		s.stats.CommitPrevious(nil)
		return
	}

	if s.cfg.DryRun {
		log.Warn().Msg("dry run mode: repairs will not be triggered")
	}

	var triggered []string
	for _, torrent := range broken {
		if s.triggerRepair(ctx, torrent) {
			s.stats.RecordRepairTriggered()
		}
		triggered = append(triggered, torrent.Hash)
		s.sleep(s.cfg.TriggerPause)
	}

	if len(underRepair) > 0 {
		log.Info().Msg("re-triggering repairs for under repair torrents")
	}
	for _, torrent := range underRepair {
		if s.triggerRepair(ctx, torrent) {
			s.stats.RecordRepairTriggered()
		}
		triggered = append(triggered, torrent.Hash)
		s.sleep(s.cfg.TriggerPause)
	}

	log.Info().Msg("torrent status check completed")

	// Summary reflects the trigger counts from this cycle.
	logCheckSummary(s.stats.Current(), deltas, hasPrevious)

	s.stats.CommitPrevious(triggered)
}

// triggerRepair asks zurg to repair one torrent. Re-triggering a torrent
// that is already under repair is safe on the remote side. In dry-run mode
// no request is made and the trigger counts as successful.
func (s *Service) triggerRepair(ctx context.Context, torrent zurg.Torrent) bool {
	if s.cfg.DryRun {
		log.Info().Str("hash", torrent.Hash).Str("name", torrent.Name).Msg("[dry run] would trigger repair")
		return true
	}

	log.Info().Str("hash", torrent.Hash).Str("name", torrent.Name).Msg("triggering repair")

	if err := s.client.TriggerRepair(ctx, torrent.Hash); err != nil {
		log.Error().Err(err).Str("hash", torrent.Hash).Str("name", torrent.Name).Msg("failed to trigger repair")
		return false
	}

	log.Info().Str("name", torrent.Name).Msg("successfully triggered repair")
	return true
}
