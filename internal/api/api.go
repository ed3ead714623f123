// Package api exposes a small local HTTP status endpoint for watch mode:
// liveness plus a JSON snapshot of the last batch run, cache statistics,
// and recent operations.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Nomadcxx/videolabels/internal/logging"
	"github.com/Nomadcxx/videolabels/internal/metacache"
	"github.com/Nomadcxx/videolabels/internal/oplog"
	"github.com/Nomadcxx/videolabels/internal/organizer"
)

// Server serves the status endpoints.
type Server struct {
	cache *metacache.Cache
	ops   *oplog.Log
	log   *logging.Logger

	mu   sync.RWMutex
	last *organizer.Summary

	srv *http.Server
}

// New builds a Server listening on addr. cache and ops may be nil; the
// corresponding status sections are then empty.
func New(addr string, cache *metacache.Cache, ops *oplog.Log, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{
		cache: cache,
		ops:   ops,
		log:   log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// SetSummary records the most recent batch run for /status.
func (s *Server) SetSummary(sum *organizer.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = sum
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("api", "status endpoint listening", logging.F("addr", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statusResponse struct {
	LastRun    *runStatus     `json:"last_run,omitempty"`
	Cache      *cacheStatus   `json:"cache,omitempty"`
	RecentOps  []oplog.Record `json:"recent_operations,omitempty"`
	ReportedAt time.Time      `json:"reported_at"`
}

type runStatus struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Executed   bool           `json:"executed"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Total      int            `json:"total"`
	Counts     map[string]int `json:"counts"`
}

type cacheStatus struct {
	Entries int64            `json:"entries"`
	Hits    int64            `json:"hits"`
	Kinds   map[string]int64 `json:"kinds"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{ReportedAt: time.Now().UTC()}

	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last != nil {
		counts := make(map[string]int)
		for status, n := range last.Counts() {
			counts[string(status)] = n
		}
		resp.LastRun = &runStatus{
			Source:     last.Source,
			Target:     last.Target,
			Executed:   last.Executed,
			StartedAt:  last.StartedAt,
			FinishedAt: last.FinishedAt,
			Total:      last.Total(),
			Counts:     counts,
		}
	}

	if s.cache != nil {
		if stats, err := s.cache.GetStats(); err == nil {
			resp.Cache = &cacheStatus{
				Entries: stats.Entries,
				Hits:    stats.Hits,
				Kinds:   stats.Kinds,
			}
		}
	}

	if s.ops != nil {
		if records, err := s.ops.Recent(20); err == nil {
			resp.RecentOps = records
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("api", "failed to encode status response", logging.F("reason", err))
	}
}
