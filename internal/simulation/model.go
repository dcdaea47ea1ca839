// Package simulation advances trains along their tracks and synthesizes the
// alerts shown in the decision panel. A Model is not safe for concurrent use;
// the dashboard runner serializes every call.
package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/rath-twin/rath/internal/models"
	"github.com/rath-twin/rath/internal/network"
)

// ErrUnknownTrain is returned for operations on a train id not in the network
var ErrUnknownTrain = errors.New("simulation: unknown train")

// DefaultIncrement is the progress added per tick
const DefaultIncrement = 0.005

// wrapEpsilon absorbs float drift so that a train which should land on 1
// after an exact number of ticks wraps instead of sitting at 0.9999999
const wrapEpsilon = 1e-9

// Conflict trigger fixture
const (
	ConflictTrainID    = "TR004"
	ConflictOtherTrain = "TR001"
	ConflictLocation   = "Junction F"
)

// Model is the train-position and alert simulation
type Model struct {
	net       *network.Network
	increment float64
	live      map[string]float64
	states    map[string]models.TrainState
	scorer    Scorer
	now       func() time.Time
}

// NewModel creates a model over n. The network is never mutated.
func NewModel(n *network.Network, increment float64, scorer Scorer) *Model {
	if increment <= 0 {
		increment = DefaultIncrement
	}
	if scorer == nil {
		scorer = NewRandomScorer(0)
	}
	return &Model{
		net:       n,
		increment: increment,
		live:      make(map[string]float64),
		states:    make(map[string]models.TrainState),
		scorer:    scorer,
		now:       time.Now,
	}
}

// SetClock replaces the time source used to stamp alerts
func (m *Model) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Model) Network() *network.Network {
	return m.net
}

func (m *Model) Increment() float64 {
	return m.increment
}

// Progress returns the live progress of a train, falling back to its static
// position before the first tick.
func (m *Model) Progress(trainID string) float64 {
	if p, ok := m.live[trainID]; ok {
		return p
	}
	if t, ok := m.net.Train(trainID); ok {
		return t.Position
	}
	return 0
}

// Tick advances every train that is not emergency-stopped and returns how
// many moved.
func (m *Model) Tick() int {
	moved := 0
	for _, t := range m.net.Trains {
		if m.status(t) == models.StatusEmergencyStopped {
			continue
		}
		next := m.Progress(t.ID) + m.increment
		if next >= 1-wrapEpsilon {
			next = 0
		}
		m.live[t.ID] = next
		moved++
	}
	return moved
}

// EmergencyStop halts a train. Stopping an already stopped train is a no-op.
func (m *Model) EmergencyStop(trainID string) error {
	if _, ok := m.net.Train(trainID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrain, trainID)
	}
	m.states[trainID] = models.TrainState{Speed: 0, Status: models.StatusEmergencyStopped}
	return nil
}

// Stopped reports whether a train has been emergency-stopped
func (m *Model) Stopped(trainID string) bool {
	s, ok := m.states[trainID]
	return ok && s.Status == models.StatusEmergencyStopped
}

func (m *Model) status(t models.Train) models.TrainStatus {
	if s, ok := m.states[t.ID]; ok {
		return s.Status
	}
	return t.Status
}

// CurrentTrain merges the static train with its runtime state and live progress
func (m *Model) CurrentTrain(trainID string) (models.LiveTrain, bool) {
	t, ok := m.net.Train(trainID)
	if !ok {
		return models.LiveTrain{}, false
	}
	return m.current(t), true
}

func (m *Model) current(t models.Train) models.LiveTrain {
	if s, ok := m.states[t.ID]; ok {
		t.Speed = s.Speed
		t.Status = s.Status
	}
	return models.LiveTrain{Train: t, Progress: m.Progress(t.ID)}
}

// LiveTrains returns every train in network order
func (m *Model) LiveTrains() []models.LiveTrain {
	out := make([]models.LiveTrain, 0, len(m.net.Trains))
	for _, t := range m.net.Trains {
		out = append(out, m.current(t))
	}
	return out
}

// ScanAlerts produces one alert per delayed or priority-hold train. It is
// meant to run once at startup.
func (m *Model) ScanAlerts() []models.Alert {
	var out []models.Alert
	for _, t := range m.net.Trains {
		var (
			kind  models.AlertKind
			issue string
		)
		switch t.Status {
		case models.StatusDelayed:
			kind = models.AlertDelayed
			issue = fmt.Sprintf("Delayed (+%d min)", t.Delay)
		case models.StatusPriorityHold:
			kind = models.AlertPriorityHold
			issue = "Priority Hold"
		default:
			continue
		}
		details := "Awaiting clearance"
		if t.DelayReason != nil && *t.DelayReason != "" {
			details = *t.DelayReason
		}
		out = append(out, m.newAlert(t.ID, t, kind, issue, details))
	}
	return out
}

// ConflictAlert synthesizes the one-shot track conflict. ok is false when
// the conflicting train is not part of the network.
func (m *Model) ConflictAlert() (models.Conflict, models.Alert, bool) {
	t, ok := m.net.Train(ConflictTrainID)
	if !ok {
		return models.Conflict{}, models.Alert{}, false
	}
	conflict := models.Conflict{
		Type:               models.AlertTrackConflict,
		Trains:             []string{ConflictOtherTrain, ConflictTrainID},
		Location:           ConflictLocation,
		Reason:             "Two trains approaching same track segment",
		EstimatedCollision: "2 minutes",
		SuggestedAction:    fmt.Sprintf("Halt %s at current position", ConflictTrainID),
		HaltTrainID:        ConflictTrainID,
	}
	alert := m.newAlert(
		"conflict-"+ConflictTrainID,
		t,
		models.AlertTrackConflict,
		"Track Conflict",
		"Approaching same segment as "+ConflictOtherTrain,
	)
	return conflict, alert, true
}

func (m *Model) newAlert(id string, t models.Train, kind models.AlertKind, issue, details string) models.Alert {
	scoring := m.scorer.Sample()
	return models.Alert{
		ID:          id,
		Kind:        kind,
		TrainID:     t.ID,
		TrainName:   t.Name,
		Issue:       issue,
		Details:     details,
		Score:       scoring.Score,
		Factors:     scoring.Factors,
		Suggestions: RerouteOptions(m.net, t.ID),
		CreatedAt:   m.now(),
	}
}
