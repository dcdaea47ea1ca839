package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/rath-twin/rath/internal/dashboard"
	"github.com/rath-twin/rath/internal/decision"
	"github.com/rath-twin/rath/internal/mapview"
	"github.com/rath-twin/rath/internal/models"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"statusColor": func(s models.TrainStatus) string { return mapview.StatusColor(s) },
	"statusLabel": func(s models.TrainStatus) string { return strings.Replace(string(s), "_", " ", 1) },
	"impacts":     decision.Impacts,
	"upper":       strings.ToUpper,
	"join":        strings.Join,
	"signed": func(n int) string {
		if n > 0 {
			return fmt.Sprintf("+%d", n)
		}
		return fmt.Sprintf("%d", n)
	},
	"time": func(t interface{ Format(string) string }) string { return t.Format("02 Jan 2006 15:04:05") },
}).ParseFS(templateFS, "templates/dashboard.html"))

// MasterChart is one of the static chart images shown side by side
type MasterChart struct {
	Title string
	Src   string
}

var masterCharts = []MasterChart{
	{Title: "Manual Master-Chart", Src: "/images/master1.jpeg"},
	{Title: "System Generated Master-Chart", Src: "/images/master2.jpeg"},
}

type pageData struct {
	Title        string
	StationTitle string
	Snap         *dashboard.Snapshot
	Map          template.HTML
	View         mapview.ViewState
	ZoomInURL    string
	ZoomOutURL   string
	Detail       *models.LiveTrain
	Charts       []MasterChart
	ShowCharts   bool
}

// pageURL builds a dashboard link that keeps the view state
func pageURL(zoom mapview.Zoom, sel mapview.Selection) string {
	q := url.Values{}
	if zoom != mapview.DefaultZoom {
		q.Set("zoom", fmt.Sprintf("%.4f", float64(zoom)))
	}
	if sel.Selected != "" {
		q.Set("selected", sel.Selected)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

// detailTrain is the train shown in the detail panel: hovered first, then
// selected
func detailTrain(snap *dashboard.Snapshot, sel mapview.Selection) *models.LiveTrain {
	id := sel.Detail()
	if id == "" {
		return nil
	}
	t, ok := snap.Train(id)
	if !ok {
		return nil
	}
	return &t
}

// GetDetail handles GET /api/detail
// Returns the detail panel fragment for the hovered or selected train; empty
// when neither names a known train
func (s *Server) GetDetail(w http.ResponseWriter, r *http.Request) {
	view := viewState(r.URL.Query())
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "detail", detailTrain(s.engine.Snapshot(), view.Selection)); err != nil {
		s.lg.Error("Failed to render detail", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render detail", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetDashboard handles GET /
// Renders the full page; a click parameter is applied and redirected away so
// that reloads do not toggle the selection again
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := viewState(q)
	if q.Get("click") != "" {
		http.Redirect(w, r, pageURL(view.Zoom, view.Selection), http.StatusSeeOther)
		return
	}

	snap := s.engine.Snapshot()
	svgData, err := s.renderMap(view)
	if err != nil {
		s.lg.Error("Failed to render map", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render map", nil)
		return
	}
	// Drop the XML declaration so the SVG can be inlined
	if i := bytes.Index(svgData, []byte("<svg")); i > 0 {
		svgData = svgData[i:]
	}

	data := pageData{
		Title:        "RATH – Railway Adaptive Traffic Handling",
		StationTitle: "Display Chart for MAS Station",
		Snap:         snap,
		Map:          template.HTML(svgData),
		View:         view,
		ZoomInURL:    pageURL(view.Zoom.In(), view.Selection),
		ZoomOutURL:   pageURL(view.Zoom.Out(), view.Selection),
		Charts:       masterCharts,
		ShowCharts:   q.Get("charts") != "",
	}
	data.Detail = detailTrain(snap, view.Selection)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.lg.Error("Failed to render dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render dashboard", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
