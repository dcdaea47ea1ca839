// Package network holds the static railway layout: stations, tracks and the
// trains placed on them. A Network is immutable once loaded; lookups never
// fail loudly and fall back to zero values when an id is unknown.
package network

import (
	"fmt"
	"strings"

	"github.com/rath-twin/rath/internal/geometry"
	"github.com/rath-twin/rath/internal/models"
)

// Network is the loaded layout
type Network struct {
	Stations []models.Station `json:"stations"`
	Tracks   []models.Track   `json:"tracks"`
	Trains   []models.Train   `json:"trains"`
	Advisory *models.Advisory `json:"advisory,omitempty"`
}

// Station returns the station with the given id
func (n *Network) Station(id string) (models.Station, bool) {
	for _, s := range n.Stations {
		if s.ID == id {
			return s, true
		}
	}
	return models.Station{}, false
}

// StationCoords returns a station's coordinate, or (0,0) if it is unknown
func (n *Network) StationCoords(id string) geometry.Point {
	if s, ok := n.Station(id); ok {
		return s.Point()
	}
	return geometry.Point{}
}

// StationName returns a station's display name, or the id itself
func (n *Network) StationName(id string) string {
	if s, ok := n.Station(id); ok {
		return s.Name
	}
	return id
}

// Track returns the track with the given id
func (n *Network) Track(id string) (models.Track, bool) {
	for _, t := range n.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Track{}, false
}

// Train returns the static train with the given id
func (n *Network) Train(id string) (models.Train, bool) {
	for _, t := range n.Trains {
		if t.ID == id {
			return t, true
		}
	}
	return models.Train{}, false
}

// TrackEnds returns the coordinates of a track's endpoints. ok is false if
// the track is unknown; missing stations still resolve to (0,0).
func (n *Network) TrackEnds(trackID string) (from, to geometry.Point, ok bool) {
	track, found := n.Track(trackID)
	if !found {
		return geometry.Point{}, geometry.Point{}, false
	}
	return n.StationCoords(track.From), n.StationCoords(track.To), true
}

// ValidationError lists every problem found in a network
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid network: %s", strings.Join(e.Problems, "; "))
}

// Validate checks field values and cross references. Runtime lookups stay
// lenient; this is where "invalid data" is told apart from "no data".
func (n *Network) Validate() error {
	var problems []string

	stations := make(map[string]bool, len(n.Stations))
	for i := range n.Stations {
		s := &n.Stations[i]
		if err := s.Validate(); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if stations[s.ID] {
			problems = append(problems, fmt.Sprintf("duplicate station %s", s.ID))
		}
		stations[s.ID] = true
	}

	tracks := make(map[string]bool, len(n.Tracks))
	for i := range n.Tracks {
		t := &n.Tracks[i]
		if err := t.Validate(); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if tracks[t.ID] {
			problems = append(problems, fmt.Sprintf("duplicate track %s", t.ID))
		}
		tracks[t.ID] = true
		if !stations[t.From] {
			problems = append(problems, fmt.Sprintf("track %s: unknown station %s", t.ID, t.From))
		}
		if !stations[t.To] {
			problems = append(problems, fmt.Sprintf("track %s: unknown station %s", t.ID, t.To))
		}
	}

	trains := make(map[string]bool, len(n.Trains))
	for i := range n.Trains {
		t := &n.Trains[i]
		if err := t.Validate(); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if trains[t.ID] {
			problems = append(problems, fmt.Sprintf("duplicate train %s", t.ID))
		}
		trains[t.ID] = true
		if !tracks[t.Track] {
			problems = append(problems, fmt.Sprintf("train %s: unknown track %s", t.ID, t.Track))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Clone returns a deep copy so callers can't mutate a shared network
func (n *Network) Clone() *Network {
	c := &Network{
		Stations: append([]models.Station(nil), n.Stations...),
		Tracks:   append([]models.Track(nil), n.Tracks...),
		Trains:   append([]models.Train(nil), n.Trains...),
	}
	for i := range c.Trains {
		c.Trains[i].DelayReason = copyString(c.Trains[i].DelayReason)
		c.Trains[i].Destination = copyString(c.Trains[i].Destination)
	}
	if n.Advisory != nil {
		a := *n.Advisory
		c.Advisory = &a
	}
	return c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
