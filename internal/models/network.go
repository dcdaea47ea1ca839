package models

import (
	"errors"
	"fmt"

	"github.com/rath-twin/rath/internal/geometry"
)

// StationCategory classifies a station for rendering
type StationCategory string

const (
	StationMajor       StationCategory = "major"
	StationJunction    StationCategory = "junction"
	StationTerminal    StationCategory = "terminal"
	StationDepot       StationCategory = "depot"
	StationYard        StationCategory = "yard"
	StationInterchange StationCategory = "interchange"
)

// TrackCategory is the kind of line a track belongs to
type TrackCategory string

const (
	TrackMain      TrackCategory = "main"
	TrackSecondary TrackCategory = "secondary"
	TrackFreight   TrackCategory = "freight"
	TrackMetro     TrackCategory = "metro"
	TrackExpress   TrackCategory = "express"
	TrackBypass    TrackCategory = "bypass"
)

// TrackStatus is set externally; nothing in the simulation derives it
type TrackStatus string

const (
	TrackActive      TrackStatus = "active"
	TrackMaintenance TrackStatus = "maintenance"
	TrackCongested   TrackStatus = "congested"
)

// Station is a node of the network. Immutable after load.
type Station struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Category  StationCategory `json:"type"`
	Platforms int             `json:"platforms"`
}

// Point returns the station's canvas coordinate
func (s Station) Point() geometry.Point {
	return geometry.Point{X: s.X, Y: s.Y}
}

// IsMajor reports whether the station is drawn with the larger marker
func (s Station) IsMajor() bool {
	return s.Category == StationMajor
}

// Validate checks if the Station has valid data
func (s *Station) Validate() error {
	if s.ID == "" {
		return errors.New("station id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("station %s: name is required", s.ID)
	}
	if s.Platforms < 0 {
		return fmt.Errorf("station %s: platforms must not be negative", s.ID)
	}
	return nil
}

// Track connects two stations
type Track struct {
	ID       string        `json:"id"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Category TrackCategory `json:"type"`
	Status   TrackStatus   `json:"status"`
	Length   float64       `json:"length"`
}

// Validate checks if the Track has valid data
func (t *Track) Validate() error {
	if t.ID == "" {
		return errors.New("track id is required")
	}
	if t.From == "" || t.To == "" {
		return fmt.Errorf("track %s: both endpoints are required", t.ID)
	}
	if t.Length < 0 {
		return fmt.Errorf("track %s: length must not be negative", t.ID)
	}
	return nil
}

// Advisory is a static weather notice shown over the map
type Advisory struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Location   string `json:"location"`
	Visibility string `json:"visibility"`
	Impact     string `json:"impact"`
}
