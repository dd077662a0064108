// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package zurg

// TorrentState is a zurg management-page state filter.
type TorrentState string

const (
	StateBroken      TorrentState = "status_broken"
	StateUnderRepair TorrentState = "status_under_repair"
)

// Label returns the human-readable state name used in logs.
func (s TorrentState) Label() string {
	switch s {
	case StateBroken:
		return "broken"
	case StateUnderRepair:
		return "under repair"
	}
	return string(s)
}

// Torrent is a single entry scraped from the zurg management interface.
// Hash is the lowercase 40-character hex info hash and acts as the
// natural key; Name is best-effort display text.
type Torrent struct {
	Hash  string
	Name  string
	State TorrentState
}
