// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package httphelpers

import "strings"

// NormalizeBasePath canonicalizes a URL base path: trimmed, a single
// leading slash, no trailing slash. Empty and root paths normalize to "".
func NormalizeBasePath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	basePath = strings.TrimRight(basePath, "/")
	if basePath == "" {
		return ""
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return basePath
}

// JoinBasePath joins a normalized base path with a suffix, always returning
// an absolute path.
func JoinBasePath(basePath, suffix string) string {
	suffix = strings.TrimPrefix(suffix, "/")
	if suffix == "" {
		if basePath == "" {
			return "/"
		}
		return basePath
	}
	return basePath + "/" + suffix
}
