// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package zurg

import (
	"html"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// zurg's management markup is an unversioned contract that has shifted
// between releases. Extraction therefore runs two tiers (data-hash table
// rows, then bare manage links) and a first-match-wins name strategy chain
// inside whichever context block a tier yields.
var (
	rowPattern        = regexp.MustCompile(`<tr[^>]*data-hash="([a-fA-F0-9]{40})"[^>]*>`)
	manageLinkPattern = regexp.MustCompile(`href="/manage/([a-fA-F0-9]{40})/"`)
	hashAttrPattern   = regexp.MustCompile(`data-hash="([a-fA-F0-9]{40})"`)
	dataNamePattern   = regexp.MustCompile(`data-name="([^"]+)"`)
	anchorPattern     = regexp.MustCompile(`<a[^>]+>([^<]+)</a>`)
	sizePattern       = regexp.MustCompile(`^\d+\.\d+\s*(GB|MB|KB|TB)$`)
)

// maxRowSpan bounds the scan for a row's closing tag so a missing </tr>
// cannot make name extraction walk the rest of the document.
const maxRowSpan = 2000

// fallbackContext is the window around a bare manage link used when no
// data-hash rows were found at all.
const fallbackContext = 1000

// nameStrategy extracts a display name from the context block around one
// hash. Strategies run in order; the first hit wins.
type nameStrategy func(block, hash string) (string, bool)

var nameStrategies = []nameStrategy{
	nameFromManageAnchor,
	nameFromDataName,
	nameFromFirstAnchor,
}

// parseTorrents extracts torrent records from management-page markup for a
// single state. Repeated hashes keep their first occurrence only.
func parseTorrents(markup string, state TorrentState) []Torrent {
	var torrents []Torrent
	seen := make(map[string]struct{})

	rowMatches := rowPattern.FindAllStringSubmatchIndex(markup, -1)
	for _, match := range rowMatches {
		hash := strings.ToLower(markup[match[2]:match[3]])
		if _, dup := seen[hash]; dup {
			continue
		}
		seen[hash] = struct{}{}

		rowStart := match[0]
		rowEnd := strings.Index(markup[rowStart:], "</tr>")
		if rowEnd == -1 {
			rowEnd = min(len(markup)-rowStart, maxRowSpan)
		}
		block := markup[rowStart : rowStart+rowEnd]

		name := extractName(block, hash)
		log.Trace().Str("state", state.Label()).Str("hash", hash).Str("name", name).Msg("found torrent")

		torrents = append(torrents, Torrent{Hash: hash, Name: name, State: state})
	}

	if len(rowMatches) > 0 {
		return torrents
	}

	// No data-hash rows at all: older zurg layouts only carry manage links.
	log.Trace().Msg("no data-hash rows found, trying manage-link fallback")

	for _, match := range manageLinkPattern.FindAllStringSubmatchIndex(markup, -1) {
		hash := strings.ToLower(markup[match[2]:match[3]])
		if _, dup := seen[hash]; dup {
			continue
		}
		seen[hash] = struct{}{}

		start := max(0, match[0]-fallbackContext)
		end := min(len(markup), match[1]+fallbackContext)
		block := markup[start:end]

		name := extractName(block, hash)
		log.Trace().Str("state", state.Label()).Str("hash", hash).Str("name", name).Msg("found torrent via fallback")

		torrents = append(torrents, Torrent{Hash: hash, Name: name, State: state})
	}

	return torrents
}

// countTotalTorrents counts distinct data-hash values anywhere in the full
// listing markup, independent of state.
func countTotalTorrents(markup string) int {
	unique := make(map[string]struct{})
	for _, match := range hashAttrPattern.FindAllStringSubmatch(markup, -1) {
		unique[strings.ToLower(match[1])] = struct{}{}
	}
	return len(unique)
}

func extractName(block, hash string) string {
	for _, strategy := range nameStrategies {
		if name, ok := strategy(block, hash); ok {
			return name
		}
	}
	return "Unknown (" + hash + ")"
}

// nameFromManageAnchor reads the anchor text of the torrent's own manage
// link, the most reliable source when present.
func nameFromManageAnchor(block, hash string) (string, bool) {
	link := `href="/manage/` + hash + `/">`
	idx := strings.Index(block, link)
	if idx == -1 {
		return "", false
	}
	rest := block[idx+len(link):]
	end := strings.Index(rest, "</a>")
	if end == -1 {
		return "", false
	}
	raw := rest[:end]
	if strings.Contains(raw, "<") {
		return "", false
	}
	name := strings.TrimSpace(html.UnescapeString(raw))
	if name == "" {
		return "", false
	}
	return name, true
}

func nameFromDataName(block, _ string) (string, bool) {
	match := dataNamePattern.FindStringSubmatch(block)
	if match == nil {
		return "", false
	}
	name := strings.TrimSpace(html.UnescapeString(match[1]))
	if name == "" {
		return "", false
	}
	return name, true
}

// nameFromFirstAnchor falls back to the first generic link text, rejecting
// values that look like a size column or are too short to be a title.
func nameFromFirstAnchor(block, _ string) (string, bool) {
	match := anchorPattern.FindStringSubmatch(block)
	if match == nil {
		return "", false
	}
	candidate := strings.TrimSpace(html.UnescapeString(match[1]))
	if sizePattern.MatchString(candidate) || len(candidate) <= 5 {
		return "", false
	}
	return candidate, true
}
