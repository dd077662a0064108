// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package redact scrubs credentials from errors before they reach logs.
package redact

import (
	"errors"
	"net/url"
	"strings"
)

var sensitiveParams = map[string]struct{}{
	"apikey":   {},
	"api_key":  {},
	"passkey":  {},
	"password": {},
	"secret":   {},
	"token":    {},
}

// URLError returns err with any sensitive query parameters and userinfo in an
// embedded url.Error replaced by REDACTED. Non-URL errors pass through
// unchanged.
func URLError(err error) error {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	return &url.Error{
		Op:  urlErr.Op,
		URL: URL(urlErr.URL),
		Err: urlErr.Err,
	}
}

// URL scrubs sensitive query parameters and the userinfo password from a raw
// URL string. Unparseable input is returned as-is.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	query := u.Query()
	changed := false
	for key := range query {
		if _, ok := sensitiveParams[strings.ToLower(key)]; ok {
			query.Set(key, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}

	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "REDACTED")
		}
	}

	return u.String()
}
