// Package api serves the simulation's observation surface over HTTP:
// the latest per-step snapshot and the recorded statistics history.
// All endpoints are read-only.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/talgya/agora/internal/engine"
	"github.com/talgya/agora/internal/persistence"
)

// Server publishes simulation snapshots to HTTP consumers. The
// simulation loop calls Publish after each step; handlers only ever
// read the latest published snapshot under the lock.
type Server struct {
	Port  int
	Store *persistence.Store // optional; enables /stats/history
	RunID string

	mu     sync.RWMutex
	latest *engine.Snapshot
}

// Publish replaces the snapshot served to consumers.
func (s *Server) Publish(snap *engine.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	historyLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/stats/history", RateLimitMiddleware(historyLimiter, s.handleHistory))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "history", s.Store != nil)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) snapshot() *engine.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{
		"run_id":         s.RunID,
		"step":           snap.Step,
		"population":     len(snap.Agents),
		"mean_integrity": snap.Stats.MeanIntegrity,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap.Stats)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "statistics recording disabled", http.StatusNotFound)
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		runID = s.RunID
	}
	history, err := s.Store.History(runID)
	if err != nil {
		slog.Error("history query failed", "run_id", runID, "error", err)
		http.Error(w, "history query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"run_id": runID,
		"steps":  history,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}
