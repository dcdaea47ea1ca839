package api

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rath-twin/rath/internal/mapview"
)

// viewState reads zoom, hovered and selected from the query string. An
// optional click parameter toggles the selection like a click on the map.
func viewState(q url.Values) mapview.ViewState {
	zoom := mapview.Zoom(mapview.DefaultZoom)
	if z := q.Get("zoom"); z != "" {
		if v, err := strconv.ParseFloat(z, 64); err == nil {
			zoom = mapview.ClampZoom(v)
		}
	}
	sel := mapview.Selection{
		Hovered:  q.Get("hovered"),
		Selected: q.Get("selected"),
	}
	if click := q.Get("click"); click != "" {
		sel = sel.Click(click)
	}
	return mapview.ViewState{Zoom: zoom, Selection: sel}
}

func (s *Server) renderMap(view mapview.ViewState) ([]byte, error) {
	snap := s.engine.Snapshot()
	var buf bytes.Buffer
	err := mapview.Render(&buf, mapview.Scene{
		Network: snap.Network,
		Trains:  snap.Trains,
		View:    view,
	})
	return buf.Bytes(), err
}

// GetMap handles GET /api/map.svg
// Query: zoom (0.5-3), hovered, selected, click
func (s *Server) GetMap(w http.ResponseWriter, r *http.Request) {
	data, err := s.renderMap(viewState(r.URL.Query()))
	if err != nil {
		s.lg.Error("Failed to render map", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render map", nil)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
