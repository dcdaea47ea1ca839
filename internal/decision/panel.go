// Package decision keeps the operator's alert list and the decisions made on
// it. Each train has at most one decision; once accepted or overridden the
// decision is final and its alert leaves the active list.
package decision

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rath-twin/rath/internal/models"
)

var (
	// ErrNotFound means there is no alert or decision for the train
	ErrNotFound = errors.New("decision: not found")
	// ErrResolved means the decision was already accepted or overridden
	ErrResolved = errors.New("decision: already resolved")
	// ErrIncompleteOverride means the override decision or reasoning is blank
	ErrIncompleteOverride = errors.New("decision: override requires a decision and a reason")
)

// Panel holds the active alerts and every decision, newest first.
// It is not safe for concurrent use.
type Panel struct {
	alerts    []models.Alert
	decisions []models.Decision
	now       func() time.Time
}

func NewPanel() *Panel {
	return &Panel{now: time.Now}
}

// SetClock replaces the time source used for decision timestamps
func (p *Panel) SetClock(now func() time.Time) {
	p.now = now
}

// UpsertAlert adds an alert, or replaces the alert already held for the same
// train in place. It reports whether an existing alert was replaced.
func (p *Panel) UpsertAlert(a models.Alert) bool {
	for i := range p.alerts {
		if p.alerts[i].TrainID == a.TrainID {
			p.alerts[i] = a
			return true
		}
	}
	p.alerts = append(p.alerts, a)
	return false
}

// RemoveAlert drops the alert for a train
func (p *Panel) RemoveAlert(trainID string) bool {
	for i := range p.alerts {
		if p.alerts[i].TrainID == trainID {
			p.alerts = append(p.alerts[:i], p.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// Alert returns the active alert for a train
func (p *Panel) Alert(trainID string) (models.Alert, bool) {
	for _, a := range p.alerts {
		if a.TrainID == trainID {
			return a, true
		}
	}
	return models.Alert{}, false
}

// Alerts returns a copy of the active alerts
func (p *Panel) Alerts() []models.Alert {
	out := make([]models.Alert, len(p.alerts))
	copy(out, p.alerts)
	return out
}

// Decision returns the decision recorded for a train
func (p *Panel) Decision(trainID string) (models.Decision, bool) {
	if i := p.index(trainID); i >= 0 {
		return p.decisions[i], true
	}
	return models.Decision{}, false
}

// Decisions returns a copy of all decisions, newest first
func (p *Panel) Decisions() []models.Decision {
	out := make([]models.Decision, len(p.decisions))
	copy(out, p.decisions)
	return out
}

// Pending counts unresolved decisions
func (p *Panel) Pending() int {
	n := 0
	for _, d := range p.decisions {
		if !d.IsResolved() {
			n++
		}
	}
	return n
}

func (p *Panel) index(trainID string) int {
	for i := range p.decisions {
		if p.decisions[i].TrainID == trainID {
			return i
		}
	}
	return -1
}

// Open turns the active alert for a train into a pending decision. If the
// train already has a decision it is returned unchanged with created false.
func (p *Panel) Open(trainID string) (d models.Decision, created bool, err error) {
	if existing, ok := p.Decision(trainID); ok {
		return existing, false, nil
	}
	a, ok := p.Alert(trainID)
	if !ok {
		return models.Decision{}, false, fmt.Errorf("%w: no alert for train %s", ErrNotFound, trainID)
	}
	d = models.Decision{
		ID:          uuid.New(),
		TrainID:     a.TrainID,
		TrainName:   a.TrainName,
		AlertID:     a.ID,
		Suggestions: a.Suggestions,
		Factors:     a.Factors,
		Score:       a.Score,
		Status:      models.DecisionPending,
		CreatedAt:   p.now(),
	}
	p.decisions = append([]models.Decision{d}, p.decisions...)
	return d, true, nil
}

// Accept resolves a pending decision as accepted and removes its alert
func (p *Panel) Accept(trainID string) (models.Decision, error) {
	i, err := p.pending(trainID)
	if err != nil {
		return models.Decision{}, err
	}
	resolved := p.now()
	p.decisions[i].Status = models.DecisionAccepted
	p.decisions[i].ResolvedAt = &resolved
	p.RemoveAlert(trainID)
	return p.decisions[i], nil
}

// Override resolves a pending decision with the operator's own decision and
// reasoning, both required, and removes its alert.
func (p *Panel) Override(trainID string, o models.Override) (models.Decision, error) {
	o.Decision = strings.TrimSpace(o.Decision)
	o.Reason = strings.TrimSpace(o.Reason)
	if o.Decision == "" || o.Reason == "" {
		return models.Decision{}, ErrIncompleteOverride
	}
	i, err := p.pending(trainID)
	if err != nil {
		return models.Decision{}, err
	}
	resolved := p.now()
	p.decisions[i].Status = models.DecisionOverridden
	p.decisions[i].Overridden = &o
	p.decisions[i].ResolvedAt = &resolved
	p.RemoveAlert(trainID)
	return p.decisions[i], nil
}

func (p *Panel) pending(trainID string) (int, error) {
	i := p.index(trainID)
	if i < 0 {
		return -1, fmt.Errorf("%w: no decision for train %s", ErrNotFound, trainID)
	}
	if p.decisions[i].IsResolved() {
		return -1, fmt.Errorf("%w: train %s is %s", ErrResolved, trainID, p.decisions[i].Status)
	}
	return i, nil
}
