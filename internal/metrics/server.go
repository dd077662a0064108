// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type MetricsServer struct {
	server         *http.Server
	manager        *Manager
	basicAuthUsers map[string]string
}

func NewMetricsServer(manager *Manager, host string, port int, basicAuthUsers string) *MetricsServer {
	s := &MetricsServer{
		manager:        manager,
		basicAuthUsers: parseBasicAuthUsers(basicAuthUsers),
	}

	r := chi.NewRouter()

	if len(s.basicAuthUsers) > 0 {
		r.Use(BasicAuth("metrics", s.basicAuthUsers))
	}

	r.Handle("/metrics", promhttp.HandlerFor(manager.GetRegistry(), promhttp.HandlerOpts{}))
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/healthz", s.handleHealthz)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *MetricsServer) ListenAndServe() error {
	log.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *MetricsServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.Shutdown(ctx)
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down metrics server")

	return s.server.Shutdown(ctx)
}

func (s *MetricsServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.manager.Stats()
	if stats == nil {
		http.Error(w, "statistics unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats.Snapshot()); err != nil {
		log.Error().Err(err).Msg("Failed to encode stats response")
	}
}

func (s *MetricsServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// parseBasicAuthUsers parses a comma-separated list of user:password pairs.
// Malformed entries are skipped with a warning.
func parseBasicAuthUsers(raw string) map[string]string {
	users := make(map[string]string)

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		username, password, ok := strings.Cut(entry, ":")
		if !ok || username == "" || password == "" {
			log.Warn().Str("entry", entry).Msg("Skipping invalid basic auth entry, expected user:password")
			continue
		}

		users[strings.TrimSpace(username)] = strings.TrimSpace(password)
	}

	return users
}

func BasicAuth(realm string, creds map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				basicAuthFailed(w, realm)
				return
			}

			expected, ok := creds[username]
			if !ok || subtle.ConstantTimeCompare([]byte(password), []byte(expected)) != 1 {
				basicAuthFailed(w, realm)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func basicAuthFailed(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm=%q`, realm))
	w.WriteHeader(http.StatusUnauthorized)
}
