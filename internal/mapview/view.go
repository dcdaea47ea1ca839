package mapview

import "math"

// Zoom limits and step
const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	ZoomStep    = 1.2
	DefaultZoom = 1.0
)

// Zoom is the map scale factor, always within [MinZoom, MaxZoom]
type Zoom float64

// ClampZoom converts an arbitrary value into a valid zoom. Non-finite values
// reset to the default.
func ClampZoom(v float64) Zoom {
	if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return DefaultZoom
	}
	return Zoom(math.Max(MinZoom, math.Min(v, MaxZoom)))
}

func (z Zoom) In() Zoom {
	return Zoom(math.Min(float64(z)*ZoomStep, MaxZoom))
}

func (z Zoom) Out() Zoom {
	return Zoom(math.Max(float64(z)/ZoomStep, MinZoom))
}

// Percent is the zoom as a whole percentage for display
func (z Zoom) Percent() int {
	return int(math.Round(float64(z) * 100))
}

// Selection tracks the hovered and the clicked train independently
type Selection struct {
	Hovered  string `json:"hovered,omitempty"`
	Selected string `json:"selected,omitempty"`
}

func (s Selection) Hover(trainID string) Selection {
	s.Hovered = trainID
	return s
}

func (s Selection) Leave() Selection {
	s.Hovered = ""
	return s
}

// Click selects a train, or clears the selection if it was already selected
func (s Selection) Click(trainID string) Selection {
	if s.Selected == trainID {
		s.Selected = ""
	} else {
		s.Selected = trainID
	}
	return s
}

// Detail is the train whose details are shown: hovered first, then selected
func (s Selection) Detail() string {
	if s.Hovered != "" {
		return s.Hovered
	}
	return s.Selected
}

// Highlighted reports whether a train gets the selection ring
func (s Selection) Highlighted(trainID string) bool {
	return trainID != "" && (s.Hovered == trainID || s.Selected == trainID)
}

// ViewState is everything the map needs beyond the network itself
type ViewState struct {
	Zoom      Zoom
	Selection Selection
}
