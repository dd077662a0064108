// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// lookupIDs reads PUID and PGID from the environment. Both must be present
// and numeric for ownership adjustment to apply.
func lookupIDs() (int, int, bool) {
	rawUID := os.Getenv("PUID")
	rawGID := os.Getenv("PGID")
	if rawUID == "" || rawGID == "" {
		return 0, 0, false
	}

	puid, err := strconv.Atoi(rawUID)
	if err != nil {
		log.Warn().Str("PUID", rawUID).Msg("ignoring non-numeric PUID")
		return 0, 0, false
	}
	pgid, err := strconv.Atoi(rawGID)
	if err != nil {
		log.Warn().Str("PGID", rawGID).Msg("ignoring non-numeric PGID")
		return 0, 0, false
	}

	return puid, pgid, true
}
