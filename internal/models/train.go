package models

import (
	"errors"
	"fmt"
)

// TrainStatus is the operational status of a train
type TrainStatus string

const (
	StatusOnTime           TrainStatus = "on_time"
	StatusDelayed          TrainStatus = "delayed"
	StatusRerouting        TrainStatus = "rerouting"
	StatusPriorityHold     TrainStatus = "priority_hold"
	StatusEmergencyStopped TrainStatus = "emergency_stopped"
)

// Train is the static description of a train as loaded.
// Position is the initial fractional progress along Track; the live value
// is kept in the simulation's overlay so this struct stays immutable.
type Train struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Track       string      `json:"track"`
	Position    float64     `json:"position"`
	Speed       float64     `json:"speed"`
	Status      TrainStatus `json:"status"`
	Passengers  int         `json:"passengers"`
	Delay       int         `json:"delay"`
	DelayReason *string     `json:"delayReason"`
	Priority    int         `json:"priority"`
	Destination *string     `json:"destination,omitempty"`
}

// Validate checks if the Train has valid data
func (t *Train) Validate() error {
	if t.ID == "" {
		return errors.New("train id is required")
	}
	if t.Track == "" {
		return fmt.Errorf("train %s: track is required", t.ID)
	}
	if t.Position < 0 || t.Position >= 1 {
		return fmt.Errorf("train %s: position out of range: must be in [0,1)", t.ID)
	}
	if t.Status == "" {
		return fmt.Errorf("train %s: status is required", t.ID)
	}
	return nil
}

// IsPassenger reports whether the train carries passengers; everything else
// is shown as freight.
func (t Train) IsPassenger() bool {
	return t.Passengers > 0
}

// Kind is the label used in the occupancy and GPS tables
func (t Train) Kind() string {
	if t.IsPassenger() {
		return "Passenger"
	}
	return "Freight"
}

// Label is "<id> - <name>"
func (t Train) Label() string {
	return t.ID + " - " + t.Name
}

// TrainState overrides speed and status of a train at runtime
type TrainState struct {
	Speed  float64     `json:"speed"`
	Status TrainStatus `json:"status"`
}

// LiveTrain is a train merged with its runtime state and live progress
type LiveTrain struct {
	Train
	Progress float64 `json:"progress"`
}

// IsStopped reports whether the train has been emergency-stopped
func (t LiveTrain) IsStopped() bool {
	return t.Status == StatusEmergencyStopped
}

// StringPtr is a helper for optional text fields
func StringPtr(s string) *string {
	return &s
}
