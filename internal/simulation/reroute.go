package simulation

import (
	"strings"

	"github.com/rath-twin/rath/internal/models"
	"github.com/rath-twin/rath/internal/network"
)

// rerouteTemplate is a canned suggestion whose route is written in station
// ids and resolved to names at lookup time.
type rerouteTemplate struct {
	prefix     string
	stations   []string
	suffix     string
	confidence int
	delay      string
	reason     string
}

// rerouteTable maps a train id to its canned suggestions. This is a fixed
// table, not a routing engine.
var rerouteTable = map[string][]rerouteTemplate{
	"TR001": {{stations: []string{"A", "E", "D", "F", "C"}, confidence: 94, delay: "+3min", reason: "Avoid maintenance on T2"}},
	"TR002": {{stations: []string{"A", "E", "D"}, confidence: 96, delay: "-2min", reason: "Faster secondary route"}},
	"TR003": {{prefix: "Hold at ", stations: []string{"D"}, suffix: " until priority clear", confidence: 95, delay: "+15min", reason: "Priority protocol"}},
	"TR004": {{prefix: "Reroute via ", stations: []string{"I", "F"}, confidence: 88, delay: "+4min", reason: "Avoid congestion at South Hub"}},
}

// RerouteOptions returns the suggestions for trainID; trains missing from
// the table get none.
func RerouteOptions(n *network.Network, trainID string) []models.Suggestion {
	templates := rerouteTable[trainID]
	if len(templates) == 0 {
		return []models.Suggestion{}
	}
	out := make([]models.Suggestion, 0, len(templates))
	for _, tpl := range templates {
		names := make([]string, len(tpl.stations))
		for i, id := range tpl.stations {
			names[i] = n.StationName(id)
		}
		out = append(out, models.Suggestion{
			Route:      tpl.prefix + strings.Join(names, " → ") + tpl.suffix,
			Confidence: tpl.confidence,
			Delay:      tpl.delay,
			Reason:     tpl.reason,
		})
	}
	return out
}
