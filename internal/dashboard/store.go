// Package dashboard composes the simulation model and the decision panel
// into one state store, and runs the loop that drives it.
package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/rath-twin/rath/internal/decision"
	"github.com/rath-twin/rath/internal/models"
	"github.com/rath-twin/rath/internal/network"
	"github.com/rath-twin/rath/internal/occupancy"
	"github.com/rath-twin/rath/internal/simulation"
)

// ErrNoConflict is returned when applying or dismissing with no conflict shown
var ErrNoConflict = errors.New("dashboard: no active conflict")

// Store owns all mutable dashboard state. Every change goes through its
// methods and bumps the version. It is not safe for concurrent use; the
// Runner is its only caller in production.
type Store struct {
	model         *simulation.Model
	panel         *decision.Panel
	conflict      *models.Conflict
	conflictFired bool
	scanned       bool
	version       uint64
	now           func() time.Time
}

func NewStore(model *simulation.Model, panel *decision.Panel) *Store {
	return &Store{
		model: model,
		panel: panel,
		now:   time.Now,
	}
}

// SetClock replaces the time source of the store, the model and the panel
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
	s.model.SetClock(now)
	s.panel.SetClock(now)
}

func (s *Store) Version() uint64 {
	return s.version
}

func (s *Store) changed() {
	s.version++
}

// Tick advances the simulation by one step
func (s *Store) Tick() int {
	moved := s.model.Tick()
	if moved > 0 {
		s.changed()
	}
	return moved
}

// ScanAlerts raises the startup alerts. Only the first call has an effect.
func (s *Store) ScanAlerts() int {
	if s.scanned {
		return 0
	}
	s.scanned = true
	alerts := s.model.ScanAlerts()
	for _, a := range alerts {
		s.panel.UpsertAlert(a)
	}
	if len(alerts) > 0 {
		s.changed()
	}
	return len(alerts)
}

// FireConflict raises the track conflict once. It reports whether the
// conflict was raised by this call.
func (s *Store) FireConflict() bool {
	if s.conflictFired {
		return false
	}
	s.conflictFired = true
	conflict, alert, ok := s.model.ConflictAlert()
	if !ok {
		return false
	}
	s.conflict = &conflict
	s.panel.UpsertAlert(alert)
	s.changed()
	return true
}

// Conflict returns the conflict currently shown, if any
func (s *Store) Conflict() (models.Conflict, bool) {
	if s.conflict == nil {
		return models.Conflict{}, false
	}
	return *s.conflict, true
}

// ApplyConflict carries out the suggested action by emergency-stopping the
// halted train, then hides the conflict.
func (s *Store) ApplyConflict() (models.Conflict, error) {
	if s.conflict == nil {
		return models.Conflict{}, ErrNoConflict
	}
	c := *s.conflict
	if err := s.model.EmergencyStop(c.HaltTrainID); err != nil {
		return c, fmt.Errorf("failed to apply conflict action: %w", err)
	}
	s.conflict = nil
	s.changed()
	return c, nil
}

// DismissConflict hides the conflict without acting on it
func (s *Store) DismissConflict() error {
	if s.conflict == nil {
		return ErrNoConflict
	}
	s.conflict = nil
	s.changed()
	return nil
}

func (s *Store) EmergencyStop(trainID string) error {
	if err := s.model.EmergencyStop(trainID); err != nil {
		return err
	}
	s.changed()
	return nil
}

// OpenDecision starts a decision from the train's alert
func (s *Store) OpenDecision(trainID string) (models.Decision, bool, error) {
	d, created, err := s.panel.Open(trainID)
	if created {
		s.changed()
	}
	return d, created, err
}

func (s *Store) Accept(trainID string) (models.Decision, error) {
	d, err := s.panel.Accept(trainID)
	if err == nil {
		s.changed()
	}
	return d, err
}

func (s *Store) Override(trainID string, o models.Override) (models.Decision, error) {
	d, err := s.panel.Override(trainID, o)
	if err == nil {
		s.changed()
	}
	return d, err
}

// Snapshot is an immutable copy of the dashboard state
type Snapshot struct {
	Version   uint64             `json:"version"`
	TakenAt   time.Time          `json:"takenAt"`
	Network   *network.Network   `json:"-"`
	Trains    []models.LiveTrain `json:"trains"`
	Alerts    []models.Alert     `json:"alerts"`
	Decisions []models.Decision  `json:"decisions"`
	Conflict  *models.Conflict   `json:"conflict"`
	Occupancy occupancy.View     `json:"occupancy"`
	Overview  Overview           `json:"overview"`
}

// Train looks up a train in the snapshot
func (s *Snapshot) Train(id string) (models.LiveTrain, bool) {
	for _, t := range s.Trains {
		if t.ID == id {
			return t, true
		}
	}
	return models.LiveTrain{}, false
}

// Snapshot copies the current state. The network is shared since it is
// never mutated.
func (s *Store) Snapshot() *Snapshot {
	n := s.model.Network()
	trains := s.model.LiveTrains()
	alerts := s.panel.Alerts()
	occ := occupancy.Derive(n, trains)

	snap := &Snapshot{
		Version:   s.version,
		TakenAt:   s.now(),
		Network:   n,
		Trains:    trains,
		Alerts:    alerts,
		Decisions: s.panel.Decisions(),
		Occupancy: occ,
		Overview:  ComputeOverview(trains, alerts, occ, s.panel.Pending()),
	}
	if s.conflict != nil {
		c := *s.conflict
		c.Trains = append([]string(nil), c.Trains...)
		snap.Conflict = &c
	}
	return snap
}
