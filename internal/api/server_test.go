package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"

	"github.com/rath-twin/rath/internal/config"
	"github.com/rath-twin/rath/internal/dashboard"
	"github.com/rath-twin/rath/internal/decision"
	"github.com/rath-twin/rath/internal/feed"
	"github.com/rath-twin/rath/internal/geometry"
	"github.com/rath-twin/rath/internal/logging"
	"github.com/rath-twin/rath/internal/mapview"
	"github.com/rath-twin/rath/internal/models"
	"github.com/rath-twin/rath/internal/network"
	"github.com/rath-twin/rath/internal/occupancy"
	"github.com/rath-twin/rath/internal/simulation"
)

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// setupTestServer starts a runner whose timers never fire during a test
func setupTestServer(t *testing.T) (*Server, *dashboard.Runner, http.Handler) {
	t.Helper()
	scorer := simulation.FixedScorer{Score: 0.9, Values: [6]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}}
	model := simulation.NewModel(network.Builtin(), simulation.DefaultIncrement, scorer)
	store := dashboard.NewStore(model, decision.NewPanel())

	lg := logging.NewWithWriter("error", discard{}, "")
	runner := dashboard.NewRunner(store, dashboard.RunnerConfig{
		TickInterval:  time.Hour,
		ConflictDelay: time.Hour,
	}, lg)
	runner.Start(context.Background())
	t.Cleanup(runner.Stop)

	cfg := &config.Config{AllowedOrigins: []string{"*"}}
	builder := feed.NewBuilder(geometry.Frame{OriginLat: 13.0827, OriginLon: 80.2707, MetersPerUnit: 10})
	srv := NewServer(runner, cfg, builder, lg)
	t.Cleanup(srv.Close)
	return srv, runner, srv.Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestGetTrains(t *testing.T) {
	_, _, h := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/trains", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	var resp GetTrainsResponse
	decodeJSON(t, rec, &resp)
	if resp.Count != 5 || len(resp.Trains) != 5 {
		t.Fatalf("count = %d, trains = %d, expected 5", resp.Count, len(resp.Trains))
	}
	if resp.Trains[0].ID != "TR001" || resp.Trains[0].Progress != 0.4 {
		t.Errorf("first train = %s at %v", resp.Trains[0].ID, resp.Trains[0].Progress)
	}
}

func TestGetTrain(t *testing.T) {
	_, _, h := setupTestServer(t)

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"known", "TR003", http.StatusOK},
		{"unknown", "TR999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/trains/"+tt.id, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, expected %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				var resp ErrorResponse
				decodeJSON(t, rec, &resp)
				if resp.Details["trainId"] != tt.id {
					t.Errorf("details = %v", resp.Details)
				}
				return
			}
			var tr models.LiveTrain
			decodeJSON(t, rec, &tr)
			if tr.Name != "Freight Gamma" {
				t.Errorf("name = %q", tr.Name)
			}
		})
	}
}

func TestPostEmergencyStop(t *testing.T) {
	_, runner, h := setupTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/trains/TR001/emergency-stop", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	var tr models.LiveTrain
	decodeJSON(t, rec, &tr)
	if tr.Status != models.StatusEmergencyStopped || tr.Speed != 0 {
		t.Errorf("train after stop = %s at %v km/h", tr.Status, tr.Speed)
	}
	if got := runner.Snapshot().Overview.StoppedTrains; got != 1 {
		t.Errorf("stopped trains = %d, expected 1", got)
	}

	rec = do(t, h, http.MethodPost, "/api/trains/TR999/emergency-stop", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown train status = %d, expected 404", rec.Code)
	}
}

func TestDecisionFlow(t *testing.T) {
	_, _, h := setupTestServer(t)

	// No alert for an on-time train
	if rec := do(t, h, http.MethodPost, "/api/alerts/TR001/open", ""); rec.Code != http.StatusNotFound {
		t.Errorf("open without alert = %d, expected 404", rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/api/alerts/TR002/open", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("open = %d, expected 200", rec.Code)
	}
	var opened OpenDecisionResponse
	decodeJSON(t, rec, &opened)
	if !opened.Created || opened.Decision.Status != models.DecisionPending {
		t.Errorf("opened = %+v", opened)
	}
	if opened.Decision.Route == "" || opened.Decision.Route == "N/A" {
		t.Errorf("expected a suggested route for TR002, got %q", opened.Decision.Route)
	}
	if len(opened.Decision.Breakdown) != len(models.FactorNames) {
		t.Errorf("breakdown has %d lines", len(opened.Decision.Breakdown))
	}

	// Opening again returns the same decision
	rec = do(t, h, http.MethodPost, "/api/alerts/TR002/open", "")
	var again OpenDecisionResponse
	decodeJSON(t, rec, &again)
	if again.Created || again.Decision.ID != opened.Decision.ID {
		t.Errorf("reopen created=%v id=%s, expected existing %s", again.Created, again.Decision.ID, opened.Decision.ID)
	}

	rec = do(t, h, http.MethodPost, "/api/decisions/TR002/accept", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("accept = %d, expected 200", rec.Code)
	}
	var accepted DecisionView
	decodeJSON(t, rec, &accepted)
	if accepted.Status != models.DecisionAccepted || accepted.ResolvedAt == nil {
		t.Errorf("accepted = %s resolved %v", accepted.Status, accepted.ResolvedAt)
	}

	if rec := do(t, h, http.MethodPost, "/api/decisions/TR002/accept", ""); rec.Code != http.StatusConflict {
		t.Errorf("second accept = %d, expected 409", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/decisions/TR001/accept", ""); rec.Code != http.StatusNotFound {
		t.Errorf("accept without decision = %d, expected 404", rec.Code)
	}
}

func TestPostOverride(t *testing.T) {
	_, runner, h := setupTestServer(t)
	do(t, h, http.MethodPost, "/api/alerts/TR003/open", "")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing reason", `{"decision":"Hold at D"}`, http.StatusBadRequest},
		{"blank decision", `{"decision":"  ","reason":"Crew change"}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
		{"valid", `{"decision":"Hold at D (5 min)","reason":"Crew availability"}`, http.StatusOK},
		{"already resolved", `{"decision":"Proceed","reason":"Cleared"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/decisions/TR003/override", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, expected %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}

	d := runner.Snapshot().Decisions[0]
	want := &models.Override{Decision: "Hold at D (5 min)", Reason: "Crew availability"}
	if diff := cmp.Diff(want, d.Overridden); diff != "" {
		t.Errorf("override mismatch (-want +got):\n%s", diff)
	}
	if got := runner.Snapshot().Overview.PendingDecisions; got != 0 {
		t.Errorf("pending = %d, expected 0", got)
	}
}

func TestFormPostRedirects(t *testing.T) {
	_, runner, h := setupTestServer(t)
	do(t, h, http.MethodPost, "/api/alerts/TR004/open", "")

	form := url.Values{}
	form.Set("controller_decision", "Hold at next station (5 min)")
	form.Set("reasoning", "Platform occupied")
	req := httptest.NewRequest(http.MethodPost, "/api/decisions/TR004/override", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://localhost:8081/?zoom=1.2000&selected=TR004")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, expected 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/?zoom=1.2000&selected=TR004" {
		t.Errorf("Location = %q", loc)
	}
	d, ok := findDecision(runner.Snapshot(), "TR004")
	if !ok || d.Status != models.DecisionOverridden {
		t.Errorf("decision after form = %+v", d)
	}
}

func findDecision(snap *dashboard.Snapshot, trainID string) (models.Decision, bool) {
	for _, d := range snap.Decisions {
		if d.TrainID == trainID {
			return d, true
		}
	}
	return models.Decision{}, false
}

func TestConflictLifecycle(t *testing.T) {
	_, runner, h := setupTestServer(t)

	if rec := do(t, h, http.MethodGet, "/api/conflict", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("conflict before firing = %d, expected 204", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/conflict/apply", ""); rec.Code != http.StatusConflict {
		t.Errorf("apply before firing = %d, expected 409", rec.Code)
	}

	err := runner.Do(context.Background(), func(st *dashboard.Store) error {
		st.FireConflict()
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	rec := do(t, h, http.MethodGet, "/api/conflict", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("conflict = %d, expected 200", rec.Code)
	}
	var c models.Conflict
	decodeJSON(t, rec, &c)
	if diff := cmp.Diff([]string{"TR001", "TR004"}, c.Trains); diff != "" {
		t.Errorf("conflict trains (-want +got):\n%s", diff)
	}

	if rec := do(t, h, http.MethodPost, "/api/conflict/apply", ""); rec.Code != http.StatusOK {
		t.Fatalf("apply = %d, expected 200", rec.Code)
	}
	snap := runner.Snapshot()
	if snap.Conflict != nil {
		t.Error("conflict still shown after apply")
	}
	if tr, _ := snap.Train("TR004"); !tr.IsStopped() {
		t.Errorf("TR004 status = %s, expected stopped", tr.Status)
	}
	if rec := do(t, h, http.MethodPost, "/api/conflict/dismiss", ""); rec.Code != http.StatusConflict {
		t.Errorf("dismiss after apply = %d, expected 409", rec.Code)
	}
}

func TestGetAlerts(t *testing.T) {
	_, _, h := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/alerts", "")
	var resp GetAlertsResponse
	decodeJSON(t, rec, &resp)

	var ids []string
	for _, a := range resp.Alerts {
		ids = append(ids, a.TrainID)
	}
	if diff := cmp.Diff([]string{"TR002", "TR003", "TR004"}, ids); diff != "" {
		t.Errorf("alert trains (-want +got):\n%s", diff)
	}
	if b := resp.Alerts[0].Breakdown[0]; b.Label != models.FactorThroughput || b.Percent != 50 || !b.Positive {
		t.Errorf("first breakdown line = %+v", b)
	}
}

func TestGetOverviewAndOccupancy(t *testing.T) {
	_, _, h := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/overview", "")
	var o dashboard.Overview
	decodeJSON(t, rec, &o)
	if o.ActiveRoutes != 15 || o.Passengers != 1100 || o.Issues != 3 {
		t.Errorf("overview = %+v", o)
	}

	rec = do(t, h, http.MethodGet, "/api/occupancy", "")
	var v occupancy.View
	decodeJSON(t, rec, &v)
	if len(v.Occupied()) != 5 || len(v.Empty) != 10 || len(v.GPS) != 5 {
		t.Errorf("occupancy: %d occupied, %d empty, %d gps", len(v.Occupied()), len(v.Empty), len(v.GPS))
	}
	if v.GPS[0].Coordinates != "(280.000000, 240.000000)" {
		t.Errorf("TR001 gps = %s", v.GPS[0].Coordinates)
	}
}

func TestGetMap(t *testing.T) {
	_, _, h := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/map.svg?zoom=9&selected=TR002", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "scale(3.0000)") {
		t.Error("zoom was not clamped to 3")
	}
	if !strings.Contains(body, `data-train="TR002"`) {
		t.Error("map has no TR002 marker")
	}
}

func TestViewState(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  mapview.ViewState
	}{
		{"defaults", "", mapview.ViewState{Zoom: 1}},
		{"bad zoom", "zoom=abc", mapview.ViewState{Zoom: 1}},
		{"low zoom", "zoom=0.1", mapview.ViewState{Zoom: 0.5}},
		{"click selects", "click=TR001", mapview.ViewState{Zoom: 1, Selection: mapview.Selection{Selected: "TR001"}}},
		{"click toggles off", "selected=TR001&click=TR001", mapview.ViewState{Zoom: 1}},
		{"hover kept", "hovered=TR002&selected=TR001", mapview.ViewState{Zoom: 1, Selection: mapview.Selection{Hovered: "TR002", Selected: "TR001"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			if diff := cmp.Diff(tt.want, viewState(q)); diff != "" {
				t.Errorf("viewState mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetFeed(t *testing.T) {
	_, _, h := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/gtfs-rt", "")
	if ct := rec.Header().Get("Content-Type"); ct != feed.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	msg := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(rec.Body.Bytes(), msg); err != nil {
		t.Fatalf("feed does not decode: %v", err)
	}
	if len(msg.GetEntity()) != 11 {
		t.Errorf("feed has %d entities, expected 11", len(msg.GetEntity()))
	}
}

func TestHealth(t *testing.T) {
	_, runner, h := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d, expected 200", rec.Code)
	}

	runner.Stop()
	rec = do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("health after stop = %d, expected 503", rec.Code)
	}
	var resp HealthResponse
	decodeJSON(t, rec, &resp)
	if resp.Simulation != "stopped" {
		t.Errorf("simulation = %q", resp.Simulation)
	}

	if rec := do(t, h, http.MethodPost, "/api/trains/TR001/emergency-stop", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("command after stop = %d, expected 503", rec.Code)
	}
}

func TestGetDashboard(t *testing.T) {
	_, _, h := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Railway Adaptive Traffic Handling",
		"Display Chart for MAS Station",
		"Click an alert to view rerouting suggestion",
		`action="/api/alerts/TR002/open"`,
		"<svg",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page is missing %q", want)
		}
	}

	rec = do(t, h, http.MethodGet, "/?zoom=1.2&click=TR001", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("click status = %d, expected 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/?selected=TR001&zoom=1.2000" {
		t.Errorf("Location = %q", loc)
	}

	rec = do(t, h, http.MethodGet, "/?selected=TR002", "")
	body = rec.Body.String()
	for _, want := range []string{"Local Beta", "Delay: +15 min", "Emergency Stop"} {
		if !strings.Contains(body, want) {
			t.Errorf("detail panel is missing %q", want)
		}
	}
}

func TestGetDetail(t *testing.T) {
	_, _, h := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/detail?hovered=TR002&selected=TR001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Local Beta") || strings.Contains(body, "Express Alpha") {
		t.Errorf("hovered train should win over the selection, got:\n%s", body)
	}

	rec = do(t, h, http.MethodGet, "/api/detail?selected=TR003", "")
	if body := rec.Body.String(); !strings.Contains(body, "Freight Gamma") {
		t.Errorf("selected detail is missing Freight Gamma:\n%s", body)
	}

	rec = do(t, h, http.MethodGet, "/api/detail", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "" {
		t.Errorf("expected an empty panel with nothing selected, got %q", body)
	}

	rec = do(t, h, http.MethodGet, "/api/detail?hovered=TR999", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "" {
		t.Errorf("unknown train rendered %q", body)
	}
}
