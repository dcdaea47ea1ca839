package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rath-twin/rath/internal/dashboard"
	"github.com/rath-twin/rath/internal/models"
	"github.com/rath-twin/rath/internal/network"
)

// commandTimeout bounds how long a handler waits for the simulation loop
const commandTimeout = 2 * time.Second

// GetTrainsResponse is the JSON response structure for GET /api/trains
type GetTrainsResponse struct {
	Trains  []models.LiveTrain `json:"trains"`
	Count   int                `json:"count"`
	Version uint64             `json:"version"`
	TakenAt time.Time          `json:"takenAt"`
}

// GetNetwork handles GET /api/network
// Returns the static stations, tracks, initial trains and advisory
func (s *Server) GetNetwork(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	if snap.Network == nil {
		writeJSON(w, http.StatusOK, &network.Network{})
		return
	}
	writeJSON(w, http.StatusOK, snap.Network)
}

// GetTrains handles GET /api/trains
// Returns every train with its current status and live progress
func (s *Server) GetTrains(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	writeJSON(w, http.StatusOK, GetTrainsResponse{
		Trains:  snap.Trains,
		Count:   len(snap.Trains),
		Version: snap.Version,
		TakenAt: snap.TakenAt,
	})
}

// GetTrain handles GET /api/trains/{trainId}
func (s *Server) GetTrain(w http.ResponseWriter, r *http.Request) {
	trainID := chi.URLParam(r, "trainId")
	t, ok := s.engine.Snapshot().Train(trainID)
	if !ok {
		writeError(w, http.StatusNotFound, "Train not found", map[string]interface{}{
			"trainId": trainID,
		})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// PostEmergencyStop handles POST /api/trains/{trainId}/emergency-stop
// The stop is permanent for the rest of the run
func (s *Server) PostEmergencyStop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	trainID := chi.URLParam(r, "trainId")
	err := s.engine.Do(ctx, func(st *dashboard.Store) error {
		return st.EmergencyStop(trainID)
	})
	if err == nil {
		s.lg.Warn("Emergency stop activated", "train", trainID)
	}

	var t models.LiveTrain
	if err == nil {
		t, _ = s.engine.Snapshot().Train(trainID)
	}
	s.respond(w, r, err, t, "emergency-stop")
}

// GetOverview handles GET /api/overview
func (s *Server) GetOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot().Overview)
}

// GetOccupancy handles GET /api/occupancy
// Returns track occupancy, empty track indices and simulated GPS readings
func (s *Server) GetOccupancy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot().Occupancy)
}
