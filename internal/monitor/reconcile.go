// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package monitor implements the polling-and-reconciliation engine: it
// drives check cycles against zurg, diffs each cycle against the previous
// one and keeps cumulative statistics for the process lifetime.
package monitor

import "math"

// PreviousCycle holds the hash sets observed one cycle ago. It is replaced
// wholesale at the end of every completed cycle and read only when computing
// the next cycle's deltas.
type PreviousCycle struct {
	Broken      []string
	UnderRepair []string
	// Triggered is the union of everything a repair was attempted for last
	// cycle, regardless of per-request success.
	Triggered []string
}

// Deltas describes how the current cycle compares to the previous one.
// These are reporting metrics only; trigger decisions ignore them.
type Deltas struct {
	Repaired         int
	MovedToRepair    int
	StillBroken      int
	StillUnderRepair int
	NewBroken        int

	// SuccessRate is Repaired over the previous cycle's trigger count, as a
	// percentage rounded to one decimal. Only meaningful when HasSuccessRate
	// is set (the previous cycle triggered at least one repair).
	SuccessRate    float64
	HasSuccessRate bool
}

// Reconcile computes the cycle-over-cycle deltas from the current broken and
// under-repair hash lists and the previous cycle's sets. It is a pure
// function; ordering and duplicates in the inputs do not affect the result.
func Reconcile(curBroken, curUnderRepair []string, prev PreviousCycle) Deltas {
	brokenNow := toSet(curBroken)
	underRepairNow := toSet(curUnderRepair)
	prevBroken := toSet(prev.Broken)
	prevUnderRepair := toSet(prev.UnderRepair)
	prevTriggered := toSet(prev.Triggered)

	var d Deltas

	for hash := range prevTriggered {
		if !brokenNow[hash] && !underRepairNow[hash] {
			d.Repaired++
		}
	}

	for hash := range prevBroken {
		if underRepairNow[hash] {
			d.MovedToRepair++
		}
		if brokenNow[hash] {
			d.StillBroken++
		}
	}

	for hash := range prevUnderRepair {
		if underRepairNow[hash] {
			d.StillUnderRepair++
		}
	}

	for hash := range brokenNow {
		if !prevBroken[hash] && !prevUnderRepair[hash] {
			d.NewBroken++
		}
	}

	if len(prevTriggered) > 0 {
		rate := float64(d.Repaired) / float64(len(prevTriggered)) * 100
		d.SuccessRate = math.Round(rate*10) / 10
		d.HasSuccessRate = true
	}

	return d
}

func toSet(hashes []string) map[string]bool {
	set := make(map[string]bool, len(hashes))
	for _, hash := range hashes {
		set[hash] = true
	}
	return set
}
