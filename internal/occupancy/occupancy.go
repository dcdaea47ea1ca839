// Package occupancy derives which train occupies each track and a synthetic
// "GPS" reading per train from the current network state.
package occupancy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rath-twin/rath/internal/geometry"
	"github.com/rath-twin/rath/internal/models"
	"github.com/rath-twin/rath/internal/network"
)

// TrackSlot is one row of the occupancy table; Index is 1-based
type TrackSlot struct {
	Index   int               `json:"index"`
	TrackID string            `json:"trackId"`
	Train   *models.LiveTrain `json:"train"`
}

// Occupied reports whether a train is on the track
func (s TrackSlot) Occupied() bool {
	return s.Train != nil
}

// Summary is "<id> - <name> (<kind>)" for an occupied slot
func (s TrackSlot) Summary() string {
	if s.Train == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s)", s.Train.Label(), s.Train.Kind())
}

// GPSEntry is a train's interpolated map position formatted as a coordinate
type GPSEntry struct {
	Index       int     `json:"index"`
	TrainID     string  `json:"trainId"`
	Label       string  `json:"train"`
	Kind        string  `json:"type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Coordinates string  `json:"gps"`
}

// View is the full occupancy panel
type View struct {
	Tracks []TrackSlot `json:"tracks"`
	Empty  []int       `json:"empty"`
	GPS    []GPSEntry  `json:"gps"`
}

// Occupied returns only the slots with a train
func (v View) Occupied() []TrackSlot {
	var out []TrackSlot
	for _, s := range v.Tracks {
		if s.Occupied() {
			out = append(out, s)
		}
	}
	return out
}

// EmptyList joins the empty track indices as "1, 2, 3"
func (v View) EmptyList() string {
	parts := make([]string, len(v.Empty))
	for i, idx := range v.Empty {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ", ")
}

// FormatCoordinates renders a position with six decimals
func FormatCoordinates(x, y float64) string {
	return fmt.Sprintf("(%.6f, %.6f)", x, y)
}

// Derive rebuilds the view. A track shows the first train found on it.
// Trains on unknown tracks, or on tracks with a missing station, get no GPS
// entry.
func Derive(n *network.Network, trains []models.LiveTrain) View {
	v := View{
		Tracks: make([]TrackSlot, 0, len(n.Tracks)),
		Empty:  []int{},
		GPS:    []GPSEntry{},
	}

	for i, track := range n.Tracks {
		slot := TrackSlot{Index: i + 1, TrackID: track.ID}
		for j := range trains {
			if trains[j].Track == track.ID {
				t := trains[j]
				slot.Train = &t
				break
			}
		}
		if slot.Train == nil {
			v.Empty = append(v.Empty, slot.Index)
		}
		v.Tracks = append(v.Tracks, slot)
	}

	for i, t := range trains {
		track, ok := n.Track(t.Track)
		if !ok {
			continue
		}
		from, okFrom := n.Station(track.From)
		to, okTo := n.Station(track.To)
		if !okFrom || !okTo {
			continue
		}
		p := geometry.Interpolate(from.Point(), to.Point(), t.Progress)
		v.GPS = append(v.GPS, GPSEntry{
			Index:       i,
			TrainID:     t.ID,
			Label:       t.Label(),
			Kind:        t.Kind(),
			X:           p.X,
			Y:           p.Y,
			Coordinates: FormatCoordinates(p.X, p.Y),
		})
	}
	return v
}
