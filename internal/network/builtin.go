package network

import "github.com/rath-twin/rath/internal/models"

// Builtin returns the demonstration network shown by default
func Builtin() *Network {
	return &Network{
		Stations: []models.Station{
			{ID: "A", Name: "Central Station", X: 200, Y: 300, Category: models.StationMajor, Platforms: 8},
			{ID: "B", Name: "North Junction", X: 400, Y: 150, Category: models.StationJunction, Platforms: 4},
			{ID: "C", Name: "East Terminal", X: 700, Y: 200, Category: models.StationTerminal, Platforms: 6},
			{ID: "D", Name: "South Hub", X: 350, Y: 500, Category: models.StationMajor, Platforms: 10},
			{ID: "E", Name: "West Depot", X: 100, Y: 400, Category: models.StationDepot, Platforms: 3},
			{ID: "F", Name: "Express Junction", X: 600, Y: 350, Category: models.StationJunction, Platforms: 4},
			{ID: "G", Name: "Suburban End", X: 800, Y: 450, Category: models.StationTerminal, Platforms: 2},
			{ID: "H", Name: "Industrial Yard", X: 150, Y: 200, Category: models.StationYard, Platforms: 6},
			{ID: "I", Name: "Metro Link", X: 500, Y: 600, Category: models.StationInterchange, Platforms: 8},
			{ID: "J", Name: "Airport Express", X: 900, Y: 300, Category: models.StationTerminal, Platforms: 4},
		},
		Tracks: []models.Track{
			{ID: "T1", From: "A", To: "B", Category: models.TrackMain, Status: models.TrackActive, Length: 25},
			{ID: "T2", From: "B", To: "C", Category: models.TrackMain, Status: models.TrackMaintenance, Length: 35},
			{ID: "T3", From: "A", To: "D", Category: models.TrackMain, Status: models.TrackActive, Length: 30},
			{ID: "T4", From: "A", To: "E", Category: models.TrackSecondary, Status: models.TrackActive, Length: 15},
			{ID: "T5", From: "D", To: "F", Category: models.TrackMain, Status: models.TrackActive, Length: 28},
			{ID: "T6", From: "F", To: "C", Category: models.TrackSecondary, Status: models.TrackCongested, Length: 20},
			{ID: "T7", From: "F", To: "G", Category: models.TrackMain, Status: models.TrackActive, Length: 22},
			{ID: "T8", From: "B", To: "F", Category: models.TrackBypass, Status: models.TrackActive, Length: 32},
			{ID: "T9", From: "E", To: "D", Category: models.TrackSecondary, Status: models.TrackActive, Length: 18},
			{ID: "T10", From: "A", To: "H", Category: models.TrackFreight, Status: models.TrackActive, Length: 12},
			{ID: "T11", From: "H", To: "B", Category: models.TrackFreight, Status: models.TrackCongested, Length: 20},
			{ID: "T12", From: "D", To: "I", Category: models.TrackMetro, Status: models.TrackActive, Length: 18},
			{ID: "T13", From: "I", To: "F", Category: models.TrackMetro, Status: models.TrackActive, Length: 15},
			{ID: "T14", From: "C", To: "J", Category: models.TrackExpress, Status: models.TrackActive, Length: 25},
			{ID: "T15", From: "F", To: "J", Category: models.TrackExpress, Status: models.TrackMaintenance, Length: 30},
		},
		Trains: []models.Train{
			{ID: "TR001", Name: "Express Alpha", Track: "T1", Position: 0.4, Speed: 85, Status: models.StatusOnTime, Passengers: 450, Priority: 3},
			{ID: "TR002", Name: "Local Beta", Track: "T3", Position: 0.4, Speed: 45, Status: models.StatusDelayed, Passengers: 180, Delay: 15,
				DelayReason: models.StringPtr("Signal failure at km 18.5"), Priority: 2},
			{ID: "TR003", Name: "Freight Gamma", Track: "T5", Position: 0.5, Speed: 35, Status: models.StatusPriorityHold, Passengers: 0, Delay: 30,
				DelayReason: models.StringPtr("Awaiting clearance for express train"), Priority: 1},
			{ID: "TR004", Name: "Metro Express", Track: "T12", Position: 0.3, Speed: 70, Status: models.StatusDelayed, Passengers: 320, Delay: 8,
				DelayReason: models.StringPtr("Platform congestion at South Hub"), Priority: 2},
			{ID: "TR005", Name: "Airport Link", Track: "T14", Position: 0.3, Speed: 95, Status: models.StatusOnTime, Passengers: 150,
				Destination: models.StringPtr("J")},
		},
		Advisory: &models.Advisory{
			Type:       "fog",
			Severity:   "high",
			Location:   "Junction B-C",
			Visibility: "50m",
			Impact:     "Speed reduction to 20 km/h",
		},
	}
}
