package dashboard

import (
	"math"

	"github.com/rath-twin/rath/internal/models"
	"github.com/rath-twin/rath/internal/occupancy"
)

// Overview is the headline statistics block
type Overview struct {
	ActiveRoutes     int     `json:"activeRoutes"`
	Passengers       int     `json:"passengers"`
	OnTimePercent    float64 `json:"onTimePercent"`
	Issues           int     `json:"issues"`
	ActiveTrains     int     `json:"activeTrains"`
	StoppedTrains    int     `json:"stoppedTrains"`
	AverageDelay     float64 `json:"averageDelay"`
	NetworkLoad      float64 `json:"networkLoad"`
	PendingDecisions int     `json:"pendingDecisions"`
}

// ComputeOverview derives the statistics from a consistent view of the state
func ComputeOverview(trains []models.LiveTrain, alerts []models.Alert, occ occupancy.View, pending int) Overview {
	o := Overview{
		ActiveRoutes:     len(occ.Tracks),
		Issues:           len(alerts),
		ActiveTrains:     len(trains),
		PendingDecisions: pending,
	}
	if len(trains) == 0 {
		return o
	}

	onTime, delay := 0, 0
	for _, t := range trains {
		o.Passengers += t.Passengers
		delay += t.Delay
		switch t.Status {
		case models.StatusOnTime:
			onTime++
		case models.StatusEmergencyStopped:
			o.StoppedTrains++
		}
	}
	o.OnTimePercent = round1(float64(onTime) * 100 / float64(len(trains)))
	o.AverageDelay = round1(float64(delay) / float64(len(trains)))
	if len(occ.Tracks) > 0 {
		o.NetworkLoad = round1(float64(len(occ.Tracks)-len(occ.Empty)) * 100 / float64(len(occ.Tracks)))
	}
	return o
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
