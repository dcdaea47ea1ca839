// Package api serves the dashboard: JSON endpoints over the live state, the
// SVG map, the HTML page, a server-sent event stream and a GTFS-RT feed.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/r3labs/sse/v2"

	"github.com/rath-twin/rath/internal/config"
	"github.com/rath-twin/rath/internal/dashboard"
	"github.com/rath-twin/rath/internal/decision"
	"github.com/rath-twin/rath/internal/feed"
	"github.com/rath-twin/rath/internal/logging"
	"github.com/rath-twin/rath/internal/metrics"
	"github.com/rath-twin/rath/internal/simulation"
)

// Engine is the running simulation as seen by the handlers
type Engine interface {
	Snapshot() *dashboard.Snapshot
	Do(ctx context.Context, fn func(*dashboard.Store) error) error
	Subscribe() (<-chan *dashboard.Snapshot, func())
	Done() <-chan struct{}
	TickStats() metrics.Summary
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Server holds the handlers' dependencies
type Server struct {
	engine Engine
	cfg    *config.Config
	feed   *feed.Builder
	events *sse.Server
	lg     *logging.Logger
}

func NewServer(engine Engine, cfg *config.Config, builder *feed.Builder, lg *logging.Logger) *Server {
	events := sse.New()
	events.AutoReplay = false
	events.CreateStream(StateStream)
	return &Server{
		engine: engine,
		cfg:    cfg,
		feed:   builder,
		events: events,
		lg:     lg,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", s.GetDashboard)
	r.Get("/health", s.GetHealth)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/events", s.GetEvents)

	r.Route("/api", func(r chi.Router) {
		r.Get("/map.svg", s.GetMap)
		r.Get("/detail", s.GetDetail)
		r.Get("/network", s.GetNetwork)
		r.Get("/overview", s.GetOverview)
		r.Get("/occupancy", s.GetOccupancy)
		r.Get("/gtfs-rt", s.GetFeed)

		r.Get("/trains", s.GetTrains)
		r.Get("/trains/{trainId}", s.GetTrain)
		r.Post("/trains/{trainId}/emergency-stop", s.PostEmergencyStop)

		r.Get("/conflict", s.GetConflict)
		r.Post("/conflict/apply", s.PostApplyConflict)
		r.Post("/conflict/dismiss", s.PostDismissConflict)

		r.Get("/alerts", s.GetAlerts)
		r.Post("/alerts/{trainId}/open", s.PostOpenDecision)
		r.Get("/decisions", s.GetDecisions)
		r.Post("/decisions/{trainId}/accept", s.PostAccept)
		r.Post("/decisions/{trainId}/override", s.PostOverride)
	})

	if s.cfg.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.cfg.StaticDir))
		r.Handle("/*", fs)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details map[string]interface{}) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// statusFor maps domain errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, decision.ErrNotFound), errors.Is(err, simulation.ErrUnknownTrain):
		return http.StatusNotFound
	case errors.Is(err, decision.ErrResolved), errors.Is(err, dashboard.ErrNoConflict):
		return http.StatusConflict
	case errors.Is(err, decision.ErrIncompleteOverride):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// isForm reports whether the request came from an HTML form on the page
func isForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// returnPath is the page the form was posted from, reduced to a local path
func returnPath(r *http.Request) string {
	u, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.RequestURI()
}

// respond finishes a command request: forms are redirected back to the page,
// API clients get JSON.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, err error, v interface{}, action string) {
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			s.lg.Error("Command failed", "action", action, "error", err)
		} else {
			s.lg.Debug("Command rejected", "action", action, "error", err)
		}
		writeError(w, status, err.Error(), map[string]interface{}{"action": action})
		return
	}
	if isForm(r) {
		http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
