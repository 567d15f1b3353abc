// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/storyexport/internal/export"
	"github.com/jeranaias/storyexport/internal/storage"
	"github.com/jeranaias/storyexport/internal/story"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8787"

	// MaxRequestBodySize bounds JSON request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxBatchSize is the most story ids accepted by one batch export.
	MaxBatchSize = 500

	// Version is the server version.
	Version = "0.1.0"
)

// ============================================================================
// STORE INTERFACE
// ============================================================================

// StoryStore is the persistence the server reads stories from.
// *storage.Store satisfies it.
type StoryStore interface {
	GetStory(ctx context.Context, owner string, id int64) (*story.Story, error)
	ListStories(ctx context.Context, owner string, f storage.Filter) ([]*story.Story, error)
	LoadCollection(ctx context.Context, owner string, f storage.Filter) (*story.Collection, error)
	Collection(ctx context.Context, owner string, id int64) (*story.Folder, error)
	Ping(ctx context.Context) error
}

var _ StoryStore = (*storage.Store)(nil)

// ============================================================================
// SERVER STATS
// ============================================================================

// ServerStats tracks export counters.
type ServerStats struct {
	TotalExports  int64            `json:"total_exports"`
	FailedExports int64            `json:"failed_exports"`
	BytesServed   int64            `json:"bytes_served"`
	ByFormat      map[string]int64 `json:"by_format"`
	StartTime     time.Time        `json:"start_time"`
	mu            sync.Mutex
}

// NewServerStats creates a new ServerStats instance.
func NewServerStats() *ServerStats {
	return &ServerStats{
		ByFormat:  make(map[string]int64),
		StartTime: time.Now(),
	}
}

// RecordExport records a successful export.
func (s *ServerStats) RecordExport(format export.Format, bytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	atomic.AddInt64(&s.TotalExports, 1)
	atomic.AddInt64(&s.BytesServed, int64(bytes))
	s.ByFormat[string(format)]++
}

// RecordFailure records a failed export.
func (s *ServerStats) RecordFailure() {
	atomic.AddInt64(&s.FailedExports, 1)
}

// GetStats returns a copy of the current stats.
func (s *ServerStats) GetStats() ServerStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	byFormat := make(map[string]int64, len(s.ByFormat))
	for k, v := range s.ByFormat {
		byFormat[k] = v
	}
	return ServerStats{
		TotalExports:  atomic.LoadInt64(&s.TotalExports),
		FailedExports: atomic.LoadInt64(&s.FailedExports),
		BytesServed:   atomic.LoadInt64(&s.BytesServed),
		ByFormat:      byFormat,
		StartTime:     s.StartTime,
	}
}

// Uptime returns the server uptime duration.
func (s *ServerStats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the HTTP API exposing story exports.
type Server struct {
	addr   string
	router *http.ServeMux
	server *http.Server

	store    StoryStore
	exporter *export.Service
	stats    *ServerStats
	auth     *AuthConfig
	limiter  *RateLimiter
	timeouts Timeouts

	mu sync.RWMutex
}

// Timeouts configures the underlying http.Server.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// DefaultTimeouts returns the default server timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Read:  30 * time.Second,
		Write: 120 * time.Second,
		Idle:  120 * time.Second,
	}
}

// NewServer creates a Server. An empty addr uses DefaultAddr.
func NewServer(addr string, store StoryStore, exporter *export.Service) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if exporter == nil {
		exporter = export.New(nil)
	}

	s := &Server{
		addr:     addr,
		router:   http.NewServeMux(),
		store:    store,
		exporter: exporter,
		stats:    NewServerStats(),
		auth:     DefaultAuthConfig(),
		limiter:  DefaultRateLimiter(),
		timeouts: DefaultTimeouts(),
	}

	s.setupRoutes()
	return s
}

// WithAuth sets the authentication configuration.
func (s *Server) WithAuth(config *AuthConfig) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = config
	return s
}

// WithRateLimiter replaces the per-client rate limiter. nil disables limiting.
func (s *Server) WithRateLimiter(rl *RateLimiter) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiter = rl
	return s
}

// WithTimeouts sets the http.Server timeouts used by Start.
func (s *Server) WithTimeouts(t Timeouts) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeouts = t
	return s
}

// WithExporter swaps the export service. Requests already running keep the
// service they started with.
func (s *Server) WithExporter(svc *export.Service) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exporter = svc
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Stats returns the server's counters.
func (s *Server) Stats() *ServerStats {
	return s.stats
}

func (s *Server) exportService() *export.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exporter
}

// ============================================================================
// ROUTES
// ============================================================================

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /stats", s.handleStats)

	s.router.HandleFunc("GET /api/stories", s.handleListStories)
	s.router.HandleFunc("GET /api/stories/{id}/export/{format}", s.handleExportStory)
	s.router.HandleFunc("POST /api/export/multiple", s.handleExportMultiple)
	s.router.HandleFunc("GET /api/export/collection", s.handleExportCollection)
	s.router.HandleFunc("GET /api/collections/{id}/export", s.handleExportFolder)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	s.mu.RLock()
	auth := s.auth
	limiter := s.limiter
	s.mu.RUnlock()

	middlewares := []func(http.Handler) http.Handler{
		RecoveryMiddleware(),
		RequestIDMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(log.Default()),
	}
	if limiter != nil {
		middlewares = append(middlewares, RateLimitMiddleware(limiter))
	}
	if auth != nil && auth.Enabled {
		middlewares = append(middlewares, AuthMiddleware(auth))
	}
	return Chain(middlewares...)(s.router)
}

// ============================================================================
// HEALTH AND STATS HANDLERS
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{Status: "ok", Version: Version, Database: "ok"}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		health.Status = "degraded"
		health.Database = "unavailable"
	}

	writeJSON(w, http.StatusOK, health)
}

// StatsResponse represents the usage statistics response.
type StatsResponse struct {
	ServerStats
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// handleStats handles GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		ServerStats:   s.stats.GetStats(),
		UptimeSeconds: int64(s.stats.Uptime().Seconds()),
	})
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	handler := s.Handler()

	s.mu.Lock()
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      handler,
		ReadTimeout:  s.timeouts.Read,
		WriteTimeout: s.timeouts.Write,
		IdleTimeout:  s.timeouts.Idle,
	}
	srv := s.server
	s.mu.Unlock()

	log.Printf("SERVER_START | addr=%s version=%s", s.addr, Version)
	return srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()

	if srv == nil {
		return nil
	}

	st := s.stats.GetStats()
	log.Printf("SERVER_SHUTDOWN | exports=%d failed=%d bytes=%d", st.TotalExports, st.FailedExports, st.BytesServed)
	return srv.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
