// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	round "github.com/okian/whackaword/internal/round"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TapDependencies
	SessionDependencies
	StatsProvider
}

// Snapshot mirrors the read shape returned by GET /session.
type Snapshot = round.Snapshot

// Server wires HTTP routes for the game API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	sessionHandler *SessionHandler
	tapsHandler    *TapsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		sessionHandler: NewSessionHandler(deps),
		tapsHandler:    NewTapsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/session", MetricsMiddleware(s.sessionHandler.HandleGetSession, "session"))
	mux.HandleFunc("/taps", MetricsMiddleware(s.tapsHandler.HandlePostTap, "taps"))
}

// tapRequest mirrors the OpenAPI schema for POST /taps.
type tapRequest struct {
	TapID string `json:"tap_id"`
	Slot  string `json:"slot"`
	Token uint64 `json:"token"`
}

func (t tapRequest) validate() error {
	switch {
	case strings.TrimSpace(t.TapID) == "":
		return errors.New("missing tap_id")
	case strings.TrimSpace(t.Slot) == "":
		return errors.New("missing slot")
	case t.Token == 0:
		return errors.New("missing token")
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
