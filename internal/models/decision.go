package models

import (
	"time"

	"github.com/google/uuid"
)

// DecisionStatus is the lifecycle state of a decision
type DecisionStatus string

const (
	DecisionPending    DecisionStatus = "pending"
	DecisionAccepted   DecisionStatus = "accepted"
	DecisionOverridden DecisionStatus = "overridden"
)

// Override is the controller's own decision replacing the suggestion
type Override struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// Decision is the operator-resolved outcome for one alert
type Decision struct {
	ID          uuid.UUID      `json:"id"`
	TrainID     string         `json:"trainId"`
	TrainName   string         `json:"trainName"`
	AlertID     string         `json:"alertId"`
	Suggestions []Suggestion   `json:"suggestions"`
	Factors     Factors        `json:"factors"`
	Score       float64        `json:"score"`
	Status      DecisionStatus `json:"status"`
	Overridden  *Override      `json:"overridden,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty"`
}

// IsResolved reports whether the decision reached a terminal state
func (d Decision) IsResolved() bool {
	return d.Status == DecisionAccepted || d.Status == DecisionOverridden
}

// SuggestedRoute returns the first suggested route, or "N/A"
func (d Decision) SuggestedRoute() string {
	if len(d.Suggestions) == 0 {
		return "N/A"
	}
	return d.Suggestions[0].Route
}
