package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iancoleman/orderedmap"
)

// Priority factors, in display order
const (
	FactorThroughput       = "Throughput"
	FactorDelayCascadeRisk = "DelayCascadeRisk"
	FactorConflictRisk     = "ConflictRisk"
	FactorEnergyCost       = "EnergyCost"
	FactorAging            = "Aging"
	FactorTrainPriority    = "TrainPriority"
)

// FactorNames lists every priority factor in display order
var FactorNames = []string{
	FactorThroughput,
	FactorDelayCascadeRisk,
	FactorConflictRisk,
	FactorEnergyCost,
	FactorAging,
	FactorTrainPriority,
}

// Factor is one named component of a priority score, in [0,1]
type Factor struct {
	Name  string
	Value float64
}

// Positive reports whether the factor raises the priority
func (f Factor) Positive() bool {
	switch f.Name {
	case FactorThroughput, FactorAging, FactorTrainPriority:
		return true
	}
	return false
}

// Factors keeps factor order stable; it serializes as a JSON object whose
// keys appear in slice order.
type Factors []Factor

// Get returns the value of the named factor
func (fs Factors) Get(name string) (float64, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

func (fs Factors) MarshalJSON() ([]byte, error) {
	o := orderedmap.New()
	for _, f := range fs {
		o.Set(f.Name, f.Value)
	}
	return json.Marshal(o)
}

func (fs *Factors) UnmarshalJSON(data []byte) error {
	o := orderedmap.New()
	if err := json.Unmarshal(data, o); err != nil {
		return err
	}
	out := make(Factors, 0, len(o.Keys()))
	for _, k := range o.Keys() {
		v, _ := o.Get(k)
		value, ok := v.(float64)
		if !ok {
			return fmt.Errorf("factor %s: expected number, got %T", k, v)
		}
		out = append(out, Factor{Name: k, Value: value})
	}
	*fs = out
	return nil
}

// Suggestion is a canned reroute proposal
type Suggestion struct {
	Route      string `json:"route"`
	Confidence int    `json:"accuracy"`
	Delay      string `json:"delay"`
	Reason     string `json:"reason"`
}

// AlertKind says which trigger produced an alert
type AlertKind string

const (
	AlertTrackConflict AlertKind = "track_conflict"
	AlertDelayed       AlertKind = "delayed"
	AlertPriorityHold  AlertKind = "priority_hold"
)

// Alert is an actionable event for one train
type Alert struct {
	ID          string       `json:"id"`
	Kind        AlertKind    `json:"kind"`
	TrainID     string       `json:"trainId"`
	TrainName   string       `json:"trainName"`
	Issue       string       `json:"issue"`
	Details     string       `json:"details"`
	Score       float64      `json:"score"`
	Factors     Factors      `json:"factors"`
	Suggestions []Suggestion `json:"suggestions"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ScoreText formats the score the way it is displayed, with two decimals
func (a Alert) ScoreText() string {
	return fmt.Sprintf("%.2f", a.Score)
}

// Conflict is the critical two-train overlay shown on the map
type Conflict struct {
	Type               AlertKind `json:"type"`
	Trains             []string  `json:"trains"`
	Location           string    `json:"location"`
	Reason             string    `json:"reason"`
	EstimatedCollision string    `json:"estimatedCollision"`
	SuggestedAction    string    `json:"suggestedAction"`
	HaltTrainID        string    `json:"haltTrainId"`
}
