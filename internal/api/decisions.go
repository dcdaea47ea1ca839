package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rath-twin/rath/internal/dashboard"
	"github.com/rath-twin/rath/internal/decision"
	"github.com/rath-twin/rath/internal/models"
)

// AlertView is an alert with its factor breakdown
type AlertView struct {
	models.Alert
	Breakdown []decision.Impact `json:"breakdown"`
}

// DecisionView is a decision with its factor breakdown
type DecisionView struct {
	models.Decision
	Route     string            `json:"suggestedRoute"`
	Breakdown []decision.Impact `json:"breakdown"`
}

// GetAlertsResponse is the JSON response structure for GET /api/alerts
type GetAlertsResponse struct {
	Alerts []AlertView `json:"alerts"`
	Count  int         `json:"count"`
}

// GetDecisionsResponse is the JSON response structure for GET /api/decisions
type GetDecisionsResponse struct {
	Decisions []DecisionView `json:"decisions"`
	Count     int            `json:"count"`
	Pending   int            `json:"pending"`
}

// OpenDecisionResponse is the JSON response for POST /api/alerts/{trainId}/open
type OpenDecisionResponse struct {
	Decision DecisionView `json:"decision"`
	Created  bool         `json:"created"`
}

// OverrideRequest is the body of POST /api/decisions/{trainId}/override
type OverrideRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

func alertView(a models.Alert) AlertView {
	return AlertView{Alert: a, Breakdown: decision.Impacts(a.Factors)}
}

func decisionView(d models.Decision) DecisionView {
	return DecisionView{
		Decision:  d,
		Route:     d.SuggestedRoute(),
		Breakdown: decision.Impacts(d.Factors),
	}
}

// GetAlerts handles GET /api/alerts
func (s *Server) GetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.engine.Snapshot().Alerts
	views := make([]AlertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, alertView(a))
	}
	writeJSON(w, http.StatusOK, GetAlertsResponse{Alerts: views, Count: len(views)})
}

// GetDecisions handles GET /api/decisions
// Returns decisions newest first
func (s *Server) GetDecisions(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	views := make([]DecisionView, 0, len(snap.Decisions))
	for _, d := range snap.Decisions {
		views = append(views, decisionView(d))
	}
	writeJSON(w, http.StatusOK, GetDecisionsResponse{
		Decisions: views,
		Count:     len(views),
		Pending:   snap.Overview.PendingDecisions,
	})
}

// PostOpenDecision handles POST /api/alerts/{trainId}/open
// Opening an alert that already has a decision returns the existing one
func (s *Server) PostOpenDecision(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	trainID := chi.URLParam(r, "trainId")
	var resp OpenDecisionResponse
	err := s.engine.Do(ctx, func(st *dashboard.Store) error {
		d, created, err := st.OpenDecision(trainID)
		resp = OpenDecisionResponse{Decision: decisionView(d), Created: created}
		return err
	})
	s.respond(w, r, err, resp, "open")
}

// PostAccept handles POST /api/decisions/{trainId}/accept
func (s *Server) PostAccept(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	trainID := chi.URLParam(r, "trainId")
	var resp DecisionView
	err := s.engine.Do(ctx, func(st *dashboard.Store) error {
		d, err := st.Accept(trainID)
		resp = decisionView(d)
		return err
	})
	if err == nil {
		s.lg.Info("Decision accepted", "train", trainID, "route", resp.Route)
	}
	s.respond(w, r, err, resp, "accept")
}

// PostOverride handles POST /api/decisions/{trainId}/override
// Accepts JSON {"decision","reason"} or the page's form fields
func (s *Server) PostOverride(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form", nil)
			return
		}
		req.Decision = r.PostForm.Get("controller_decision")
		req.Reason = r.PostForm.Get("reasoning")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	trainID := chi.URLParam(r, "trainId")
	var resp DecisionView
	err := s.engine.Do(ctx, func(st *dashboard.Store) error {
		d, err := st.Override(trainID, models.Override{Decision: req.Decision, Reason: req.Reason})
		resp = decisionView(d)
		return err
	})
	if err == nil {
		s.lg.Info("Decision overridden", "train", trainID, "decision", req.Decision)
	}
	s.respond(w, r, err, resp, "override")
}

// GetConflict handles GET /api/conflict
// Returns 204 when no conflict is shown
func (s *Server) GetConflict(w http.ResponseWriter, r *http.Request) {
	c := s.engine.Snapshot().Conflict
	if c == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// PostApplyConflict handles POST /api/conflict/apply
func (s *Server) PostApplyConflict(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	var c models.Conflict
	err := s.engine.Do(ctx, func(st *dashboard.Store) error {
		var err error
		c, err = st.ApplyConflict()
		return err
	})
	if err == nil {
		s.lg.Warn("Conflict action applied", "halted", c.HaltTrainID, "location", c.Location)
	}
	s.respond(w, r, err, c, "conflict-apply")
}

// PostDismissConflict handles POST /api/conflict/dismiss
func (s *Server) PostDismissConflict(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	err := s.engine.Do(ctx, func(st *dashboard.Store) error {
		return st.DismissConflict()
	})
	s.respond(w, r, err, map[string]string{"status": "dismissed"}, "conflict-dismiss")
}
