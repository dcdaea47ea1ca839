package api

import (
	"net/http"
	"time"

	"github.com/rath-twin/rath/internal/feed"
	"github.com/rath-twin/rath/internal/metrics"
)

// HealthResponse is the JSON response for GET /health
type HealthResponse struct {
	Status     string          `json:"status"`
	Simulation string          `json:"simulation"`
	Version    uint64          `json:"version"`
	LastUpdate time.Time       `json:"lastUpdate"`
	Ticks      metrics.Summary `json:"ticks"`
	Timestamp  time.Time       `json:"timestamp"`
}

// GetHealth handles GET /health
// Reports 503 once the simulation loop has stopped
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	resp := HealthResponse{
		Status:     "ok",
		Simulation: "running",
		Version:    snap.Version,
		LastUpdate: snap.TakenAt.UTC(),
		Ticks:      s.engine.TickStats(),
		Timestamp:  time.Now().UTC(),
	}

	select {
	case <-s.engine.Done():
		resp.Status = "error"
		resp.Simulation = "stopped"
		writeJSON(w, http.StatusServiceUnavailable, resp)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// GetFeed handles GET /api/gtfs-rt
// Returns the live state as a GTFS-Realtime FeedMessage
func (s *Server) GetFeed(w http.ResponseWriter, r *http.Request) {
	data, err := s.feed.Encode(s.engine.Snapshot())
	if err != nil {
		s.lg.Error("Failed to encode feed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode feed", nil)
		return
	}
	w.Header().Set("Content-Type", feed.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
