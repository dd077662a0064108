// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package monitor

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/zurgmon/internal/zurg"
)

// CheckStats captures the outcome of a single cycle. It is built fresh at
// the start of every cycle and replaced, never merged.
type CheckStats struct {
	TotalTorrents     int      `json:"totalTorrents"`
	BrokenFound       int      `json:"brokenFound"`
	UnderRepairFound  int      `json:"underRepairFound"`
	OKTorrents        int      `json:"okTorrents"`
	RepairsTriggered  int      `json:"repairsTriggered"`
	BrokenHashes      []string `json:"brokenHashes"`
	BrokenNames       []string `json:"brokenNames"`
	UnderRepairHashes []string `json:"underRepairHashes"`
	UnderRepairNames  []string `json:"underRepairNames"`
}

// Snapshot is a copy of the aggregate statistics safe to hand to the
// metrics and status surfaces.
type Snapshot struct {
	TotalChecks      int        `json:"totalChecks"`
	BrokenFound      int        `json:"brokenFound"`
	UnderRepairFound int        `json:"underRepairFound"`
	RepairsTriggered int        `json:"repairsTriggered"`
	LastCheck        *time.Time `json:"lastCheck,omitempty"`
	LastBrokenFound  *time.Time `json:"lastBrokenFound,omitempty"`
	Current          CheckStats `json:"currentCheck"`
}

// Stats owns the process-lifetime monitoring state: monotonically growing
// counters, the current cycle's CheckStats and the previous cycle's hash
// sets. All mutation happens on the monitor goroutine; the mutex only
// shields the read-only Snapshot copies served to the metrics listener.
type Stats struct {
	mu sync.RWMutex

	totalChecks      int
	brokenFound      int
	underRepairFound int
	repairsTriggered int
	lastCheck        time.Time
	lastBrokenFound  time.Time

	current  CheckStats
	previous PreviousCycle

	now func() time.Time
}

// NewStats constructs an empty aggregate.
func NewStats() *Stats {
	return &Stats{now: time.Now}
}

// StartCycle discards the working state of the prior cycle.
func (s *Stats) StartCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = CheckStats{}
}

// RecordAbortedCycle counts a cycle whose category fetches both failed. The
// previous-cycle sets deliberately stay untouched; the next successful cycle
// still diffs against the last real observation.
func (s *Stats) RecordAbortedCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalChecks++
	s.lastCheck = s.now()
}

// RecordObservations folds one cycle's fetched torrents into the current
// check and the cumulative counters.
func (s *Stats) RecordObservations(broken, underRepair []zurg.Torrent, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalChecks++
	s.lastCheck = s.now()

	s.current.TotalTorrents = total
	s.current.BrokenFound = len(broken)
	s.current.UnderRepairFound = len(underRepair)

	s.brokenFound += len(broken)
	s.underRepairFound += len(underRepair)
	if len(broken) > 0 {
		s.lastBrokenFound = s.now()
	}

	for _, torrent := range broken {
		s.current.BrokenHashes = append(s.current.BrokenHashes, torrent.Hash)
		s.current.BrokenNames = append(s.current.BrokenNames, torrent.Name)
	}
	for _, torrent := range underRepair {
		s.current.UnderRepairHashes = append(s.current.UnderRepairHashes, torrent.Hash)
		s.current.UnderRepairNames = append(s.current.UnderRepairNames, torrent.Name)
	}

	if total > 0 {
		ok := total - len(broken) - len(underRepair)
		if ok < 0 {
			// The total listing and the category listings are separate
			// fetches; a remote-side change between them can make the math
			// go negative. Surface it rather than clamping silently.
			log.Warn().
				Int("total", total).
				Int("broken", len(broken)).
				Int("underRepair", len(underRepair)).
				Msg("inconsistent listing counts: broken + under repair exceed total")
		}
		s.current.OKTorrents = ok
	}
}

// RecordRepairTriggered counts one successful (or dry-run) repair trigger.
func (s *Stats) RecordRepairTriggered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.RepairsTriggered++
	s.repairsTriggered++
}

// CommitPrevious atomically replaces the previous-cycle sets with the
// current cycle's observations. triggered lists every hash a repair was
// attempted for this cycle; a healthy cycle commits an empty trigger set.
func (s *Stats) CommitPrevious(triggered []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.previous = PreviousCycle{
		Broken:      append([]string(nil), s.current.BrokenHashes...),
		UnderRepair: append([]string(nil), s.current.UnderRepairHashes...),
		Triggered:   append([]string(nil), triggered...),
	}
}

// Previous returns a copy of the previous-cycle sets for delta computation.
func (s *Stats) Previous() PreviousCycle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return PreviousCycle{
		Broken:      append([]string(nil), s.previous.Broken...),
		UnderRepair: append([]string(nil), s.previous.UnderRepair...),
		Triggered:   append([]string(nil), s.previous.Triggered...),
	}
}

// Current returns a copy of the current cycle's working stats.
func (s *Stats) Current() CheckStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCheckStats(s.current)
}

// Snapshot returns a copy of the aggregate state.
func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := Snapshot{
		TotalChecks:      s.totalChecks,
		BrokenFound:      s.brokenFound,
		UnderRepairFound: s.underRepairFound,
		RepairsTriggered: s.repairsTriggered,
		Current:          copyCheckStats(s.current),
	}
	if !s.lastCheck.IsZero() {
		t := s.lastCheck
		snapshot.LastCheck = &t
	}
	if !s.lastBrokenFound.IsZero() {
		t := s.lastBrokenFound
		snapshot.LastBrokenFound = &t
	}
	return snapshot
}

func copyCheckStats(c CheckStats) CheckStats {
	out := c
	out.BrokenHashes = append([]string(nil), c.BrokenHashes...)
	out.BrokenNames = append([]string(nil), c.BrokenNames...)
	out.UnderRepairHashes = append([]string(nil), c.UnderRepairHashes...)
	out.UnderRepairNames = append([]string(nil), c.UnderRepairNames...)
	return out
}
