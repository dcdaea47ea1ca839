// Package mapview renders the network map as SVG and holds the map's view
// state: zoom and train selection.
package mapview

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/rath-twin/rath/internal/geometry"
	"github.com/rath-twin/rath/internal/models"
	"github.com/rath-twin/rath/internal/network"
)

// Canvas size in map units
const (
	Width  = 1200
	Height = 800
	grid   = 50
)

// Scene is the input to Render
type Scene struct {
	Network *network.Network
	Trains  []models.LiveTrain
	View    ViewState
}

// TrainPosition projects a train onto the map. Unknown tracks yield (0,0).
func TrainPosition(n *network.Network, t models.LiveTrain) geometry.Point {
	p, _ := n.Project(t.Track, t.Progress)
	return p
}

// errWriter keeps the first write error so svgo's unchecked writes can be
// reported once at the end
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func px(v float64) int {
	return int(math.Round(v))
}

// Render writes the complete map document
func Render(w io.Writer, s Scene) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Startview(Width, Height, 0, 0, Width, Height)
	canvas.Title("Railway network")

	canvas.Def()
	canvas.Pattern("grid", 0, 0, grid, grid, "user")
	canvas.Path(fmt.Sprintf("M %d 0 L 0 0 0 %d", grid, grid), "fill:none;stroke:#374151;stroke-width:1;opacity:0.3")
	canvas.PatternEnd()
	canvas.DefEnd()

	canvas.Rect(0, 0, Width, Height, "fill:#1f2937")

	zoom := s.View.Zoom
	if zoom == 0 {
		zoom = DefaultZoom
	}
	canvas.Gtransform(fmt.Sprintf("translate(%d %d) scale(%.4f) translate(%d %d)",
		Width/2, Height/2, float64(zoom), -Width/2, -Height/2))
	canvas.Rect(0, 0, Width, Height, "fill:url(#grid)")

	if s.Network != nil {
		renderTracks(canvas, s.Network)
		renderStations(canvas, s.Network)
		for _, t := range s.Trains {
			renderTrain(canvas, s.Network, t, s.View.Selection)
		}
	}
	canvas.Gend()

	renderLegend(canvas)
	if s.Network != nil && s.Network.Advisory != nil {
		renderAdvisory(canvas, *s.Network.Advisory)
	}

	canvas.End()
	return ew.err
}

func renderTracks(canvas *svg.SVG, n *network.Network) {
	for _, track := range n.Tracks {
		from, to := n.StationCoords(track.From), n.StationCoords(track.To)
		style := fmt.Sprintf("stroke:%s;stroke-width:8;opacity:0.8", TrackColor(string(track.Status)))
		if track.Status == models.TrackMaintenance {
			style += ";stroke-dasharray:10,5"
		}
		canvas.Group(`class="track"`, fmt.Sprintf(`data-track="%s"`, html.EscapeString(track.ID)))
		canvas.Line(px(from.X), px(from.Y), px(to.X), px(to.Y), style)
		mid := geometry.Midpoint(from, to)
		canvas.Text(px(mid.X), px(mid.Y)-10, fmt.Sprintf("%s (%gkm)", track.ID, track.Length),
			"fill:white;font-size:10px;text-anchor:middle;font-family:monospace")
		canvas.Gend()
	}
}

func renderStations(canvas *svg.SVG, n *network.Network) {
	for _, st := range n.Stations {
		outer, inner := 15, 10
		if st.IsMajor() {
			outer, inner = 20, 15
		}
		x, y := px(st.X), px(st.Y)
		canvas.Group(`class="station"`, fmt.Sprintf(`data-station="%s"`, html.EscapeString(st.ID)))
		canvas.Circle(x, y, outer, "fill:#1f2937;stroke:#60a5fa;stroke-width:3")
		canvas.Circle(x, y, inner, "fill:#60a5fa;opacity:0.8")
		canvas.Text(x, y-30, st.Name, "fill:white;font-size:12px;text-anchor:middle;font-weight:600")
		canvas.Gend()
	}
}

func renderTrain(canvas *svg.SVG, n *network.Network, t models.LiveTrain, sel Selection) {
	pos := TrainPosition(n, t)
	x, y := px(pos.X), px(pos.Y)
	color := StatusColor(t.Status)

	canvas.Group(`class="train"`, fmt.Sprintf(`data-train="%s"`, html.EscapeString(t.ID)))
	canvas.Roundrect(x-15, y-8, 30, 16, 8, 8, fmt.Sprintf("fill:%s;stroke:white;stroke-width:2", color))
	canvas.Polygon([]int{x + 15, x + 25, x + 25}, []int{y, y - 5, y + 5}, "fill:"+color)
	canvas.Circle(x, y, 4, "fill:white")
	canvas.Text(x, y-20, t.Name, "fill:white;font-size:10px;text-anchor:middle;font-weight:600")
	canvas.Text(x, y+30, fmt.Sprintf("%g km/h", t.Speed), "fill:#d1d5db;font-size:8px;text-anchor:middle")
	if t.IsStopped() {
		canvas.Circle(x, y, 30, "fill:none;stroke:#dc2626;stroke-width:3;stroke-dasharray:5,5;opacity:0.8")
		canvas.Text(x, y+45, "STOPPED", "fill:#dc2626;font-size:8px;text-anchor:middle;font-weight:bold")
	}
	if sel.Highlighted(t.ID) {
		canvas.Circle(x, y, 35, "fill:none;stroke:#fbbf24;stroke-width:3;stroke-dasharray:5,5;opacity:0.8", `class="highlight"`)
	}
	canvas.Gend()
}

type legendEntry struct {
	label  string
	color  string
	dashed bool
}

var (
	legendTrackStatus = []legendEntry{
		{"Active", TrackColor(string(models.TrackActive)), false},
		{"Maintenance", TrackColor(string(models.TrackMaintenance)), true},
		{"Congested", TrackColor(string(models.TrackCongested)), false},
	}
	legendTrainStatus = []legendEntry{
		{"On Time", StatusColor(models.StatusOnTime), false},
		{"Delayed", StatusColor(models.StatusDelayed), false},
		{"Emergency Stop", StatusColor(models.StatusEmergencyStopped), false},
	}
	legendTrackType = []legendEntry{
		{"Freight", TrackColor(string(models.TrackFreight)), false},
		{"Metro", TrackColor(string(models.TrackMetro)), false},
		{"Express", TrackColor(string(models.TrackExpress)), false},
	}
)

func renderLegend(canvas *svg.SVG) {
	canvas.Gtransform("translate(50, 680)")
	canvas.Roundrect(0, 0, 400, 110, 8, 8, "fill:rgba(0,0,0,0.95);stroke:#374151;stroke-width:2")
	canvas.Text(15, 25, "Railway Network Legend", "fill:white;font-size:14px;font-weight:bold")

	column := func(x int, title string, entries []legendEntry, swatch func(e legendEntry)) {
		canvas.Gtransform(fmt.Sprintf("translate(%d, 40)", x))
		canvas.Text(0, 0, title, "fill:#d1d5db;font-size:11px;font-weight:600")
		for i, e := range entries {
			canvas.Gtransform(fmt.Sprintf("translate(0, %d)", 15*(i+1)))
			swatch(e)
			canvas.Text(25, 5, e.label, "fill:white;font-size:9px")
			canvas.Gend()
		}
		canvas.Gend()
	}

	line := func(e legendEntry) {
		style := fmt.Sprintf("stroke:%s;stroke-width:4", e.color)
		if e.dashed {
			style += ";stroke-dasharray:5,5"
		}
		canvas.Line(0, 0, 20, 0, style)
	}
	pill := func(e legendEntry) {
		canvas.Roundrect(0, -6, 16, 12, 6, 6, "fill:"+e.color)
	}

	column(15, "Track Status:", legendTrackStatus, line)
	column(120, "Train Status:", legendTrainStatus, pill)
	column(250, "Track Types:", legendTrackType, line)
	canvas.Gend()
}

func renderAdvisory(canvas *svg.SVG, a models.Advisory) {
	canvas.Gtransform(fmt.Sprintf("translate(%d, 20)", Width-300))
	canvas.Roundrect(0, 0, 280, 100, 8, 8, "fill:rgba(255,255,255,0.95);stroke:#ef4444;stroke-width:2")
	canvas.Text(12, 22, "Weather Alert: "+strings.ToUpper(a.Type), "fill:#dc2626;font-size:13px;font-weight:bold")
	canvas.Text(12, 42, "Location: "+a.Location, "fill:#111827;font-size:11px")
	canvas.Text(12, 58, "Visibility: "+a.Visibility, "fill:#111827;font-size:11px")
	canvas.Text(12, 80, "Impact: "+a.Impact, "fill:#dc2626;font-size:10px")
	canvas.Gend()
}
