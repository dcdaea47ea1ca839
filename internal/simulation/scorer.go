package simulation

import (
	"math"
	"time"

	"github.com/MichaelTJones/pcg"

	"github.com/rath-twin/rath/internal/models"
)

// Score bounds for generated alerts
const (
	MinScore = 0.80
	MaxScore = 0.95
)

// Scoring is the priority data attached to an alert
type Scoring struct {
	Score   float64
	Factors models.Factors
}

// Scorer produces priority data for new alerts. The values are filler for
// the panel; only their shape (six factors in [0,1], a score in
// [MinScore, MaxScore]) is meaningful.
type Scorer interface {
	Sample() Scoring
}

// RandomScorer draws scores from a PCG generator
type RandomScorer struct {
	r *pcg.PCG32
}

// NewRandomScorer returns a scorer seeded with seed; 0 seeds from the clock.
func NewRandomScorer(seed int64) *RandomScorer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := pcg.NewPCG32()
	r.Seed(uint64(seed), 0xda3e39cb94b95bdb)
	return &RandomScorer{r: r}
}

// float64 returns a uniform value in [0,1)
func (s *RandomScorer) float64() float64 {
	return float64(s.r.Random()) / (1 << 32)
}

func (s *RandomScorer) Sample() Scoring {
	factors := make(models.Factors, 0, len(models.FactorNames))
	for _, name := range models.FactorNames {
		factors = append(factors, models.Factor{Name: name, Value: s.float64()})
	}
	score := MinScore + s.float64()*(MaxScore-MinScore)
	return Scoring{
		Score:   roundTo(score, 2),
		Factors: factors,
	}
}

// FixedScorer always returns the same values; used by tests and demos
type FixedScorer struct {
	Score  float64
	Values [6]float64
}

func (s FixedScorer) Sample() Scoring {
	factors := make(models.Factors, len(models.FactorNames))
	for i, name := range models.FactorNames {
		factors[i] = models.Factor{Name: name, Value: s.Values[i]}
	}
	return Scoring{Score: s.Score, Factors: factors}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
