// Package metrics keeps running statistics without storing observations.
package metrics

import (
	"math"
	"time"
)

// Welford holds running statistics using Welford's online algorithm
type Welford struct {
	Count int
	Mean  float64
	M2    float64 // sum of squared differences from the mean
	Max   float64
}

// Update adds one observation
func (w *Welford) Update(v float64) {
	w.Count++
	delta := v - w.Mean
	w.Mean += delta / float64(w.Count)
	w.M2 += delta * (v - w.Mean)
	if w.Count == 1 || v > w.Max {
		w.Max = v
	}
}

// StdDev returns the population standard deviation, 0 below two observations
func (w *Welford) StdDev() float64 {
	if w.Count < 2 {
		return 0
	}
	return math.Sqrt(w.M2 / float64(w.Count))
}

// Summary is a JSON-friendly view of a duration series in milliseconds
type Summary struct {
	Count    int     `json:"count"`
	MeanMs   float64 `json:"meanMs"`
	StdDevMs float64 `json:"stdDevMs"`
	MaxMs    float64 `json:"maxMs"`
}

// Durations tracks how long a recurring operation takes
type Durations struct {
	w Welford
}

func (d *Durations) Observe(elapsed time.Duration) {
	d.w.Update(float64(elapsed) / float64(time.Millisecond))
}

func (d *Durations) Summary() Summary {
	return Summary{
		Count:    d.w.Count,
		MeanMs:   round3(d.w.Mean),
		StdDevMs: round3(d.w.StdDev()),
		MaxMs:    round3(d.w.Max),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
