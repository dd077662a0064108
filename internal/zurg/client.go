// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package zurg talks to the zurg management interface: a rate-limited HTTP
// client plus the HTML extraction that turns management pages into torrent
// records.
package zurg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/zurgmon/pkg/httphelpers"
	"github.com/autobrr/zurgmon/pkg/redact"
)

// Config holds the options for constructing a Client.
type Config struct {
	BaseURL   string
	Username  string
	Password  string
	UserAgent string

	Timeout      time.Duration
	ProbeTimeout time.Duration

	// RateLimitRequests requests are allowed before the client sleeps for
	// RateLimitBackoff and resets its counter; every request below the
	// threshold sleeps RateLimitDelay first.
	RateLimitRequests int
	RateLimitDelay    time.Duration
	RateLimitBackoff  time.Duration

	HTTPClient *http.Client
}

// Client issues throttled requests against a zurg instance. It is not safe
// for concurrent use; the monitor drives it from a single goroutine.
type Client struct {
	baseURL   string
	basePath  string
	username  string
	password  string
	userAgent string

	httpClient   *http.Client
	probeTimeout time.Duration

	rateLimitRequests int
	rateLimitDelay    time.Duration
	rateLimitBackoff  time.Duration
	requestCount      int

	sleep func(time.Duration)
}

// NewClient constructs a new Client using the provided configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = "zurgmon"
	}

	rateLimitRequests := cfg.RateLimitRequests
	if rateLimitRequests <= 0 {
		rateLimitRequests = 10
	}
	rateLimitDelay := cfg.RateLimitDelay
	if rateLimitDelay <= 0 {
		rateLimitDelay = 500 * time.Millisecond
	}
	rateLimitBackoff := cfg.RateLimitBackoff
	if rateLimitBackoff <= 0 {
		rateLimitBackoff = 5 * time.Second
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	basePath := ""
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		basePath = httphelpers.NormalizeBasePath(u.Path)
		u.Path = ""
		baseURL = strings.TrimRight(u.String(), "/")
	}

	return &Client{
		baseURL:           baseURL,
		basePath:          basePath,
		username:          cfg.Username,
		password:          cfg.Password,
		userAgent:         ua,
		httpClient:        httpClient,
		probeTimeout:      probeTimeout,
		rateLimitRequests: rateLimitRequests,
		rateLimitDelay:    rateLimitDelay,
		rateLimitBackoff:  rateLimitBackoff,
		sleep:             time.Sleep,
	}
}

// throttle enforces the request allowance before every listing or repair call.
// It blocks the calling cycle on purpose: zurg's management interface does
// not cope well with bursts.
func (c *Client) throttle() {
	c.requestCount++
	if c.requestCount >= c.rateLimitRequests {
		log.Debug().
			Int("requests", c.rateLimitRequests).
			Dur("backoff", c.rateLimitBackoff).
			Msg("rate limit reached, backing off")
		c.sleep(c.rateLimitBackoff)
		c.requestCount = 0
		return
	}
	c.sleep(c.rateLimitDelay)
}

// fetch performs a single request and classifies failures. A nil error means
// the remote answered 2xx and body holds the full response.
func (c *Client) fetch(ctx context.Context, path, method string, timeout time.Duration) ([]byte, error) {
	endpoint := c.baseURL + httphelpers.JoinBasePath(c.basePath, path)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.Trace().Str("method", method).Str("url", redact.URL(endpoint)).Msg("making request")

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request for %s: %w", redact.URL(endpoint), err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: redact.URL(endpoint), Err: redact.URLError(err)}
	}
	defer httphelpers.DrainAndClose(resp)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &ProtocolError{URL: redact.URL(endpoint), StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: redact.URL(endpoint), Err: err}
	}

	log.Trace().Int("bytes", len(body)).Msg("request successful")
	return body, nil
}

// TestConnection probes the zurg stats endpoint with a short timeout. The
// probe is not rate limited; it runs once at startup.
func (c *Client) TestConnection(ctx context.Context) bool {
	log.Debug().Str("url", c.baseURL).Msg("testing connection to zurg")

	if _, err := c.fetch(ctx, "/stats", http.MethodGet, c.probeTimeout); err != nil {
		log.Error().Err(err).Msg("failed to connect to zurg")
		return false
	}

	log.Info().Msg("successfully connected to zurg")
	return true
}

// TorrentsByState fetches and parses the management listing for one state.
func (c *Client) TorrentsByState(ctx context.Context, state TorrentState) ([]Torrent, error) {
	log.Debug().Str("state", state.Label()).Msg("fetching torrents from zurg")

	c.throttle()
	body, err := c.fetch(ctx, "/manage/?state="+string(state), http.MethodGet, 0)
	if err != nil {
		return nil, err
	}

	torrents := parseTorrents(string(body), state)
	log.Debug().Str("state", state.Label()).Int("count", len(torrents)).Msg("parsed torrents")
	return torrents, nil
}

// TotalTorrents counts distinct torrents across the full management listing.
func (c *Client) TotalTorrents(ctx context.Context) (int, error) {
	log.Debug().Msg("fetching total torrent statistics")

	c.throttle()
	body, err := c.fetch(ctx, "/manage/", http.MethodGet, 0)
	if err != nil {
		return 0, err
	}

	total := countTotalTorrents(string(body))
	log.Debug().Int("total", total).Msg("counted torrents")
	return total, nil
}

// TriggerRepair asks zurg to repair a single torrent. Any non-failure
// response counts as success.
func (c *Client) TriggerRepair(ctx context.Context, hash string) error {
	c.throttle()
	if _, err := c.fetch(ctx, "/manage/"+hash+"/repair", http.MethodPost, 0); err != nil {
		return err
	}
	return nil
}
