package mapview

import "github.com/rath-twin/rath/internal/models"

// DefaultColor is used for any status or category without an entry
const DefaultColor = "#6b7280"

// trackColors is keyed by track status and by track category. Tracks are
// stroked by status; the category entries feed the legend.
var trackColors = map[string]string{
	string(models.TrackActive):      "#10b981",
	string(models.TrackMaintenance): "#ef4444",
	string(models.TrackCongested):   "#f59e0b",
	string(models.TrackBypass):      "#3b82f6",
	string(models.TrackFreight):     "#8b5cf6",
	string(models.TrackMetro):       "#06b6d4",
	string(models.TrackExpress):     "#f97316",
}

var statusColors = map[models.TrainStatus]string{
	models.StatusOnTime:           "#10b981",
	models.StatusDelayed:          "#f59e0b",
	models.StatusRerouting:        "#3b82f6",
	models.StatusPriorityHold:     "#ef4444",
	models.StatusEmergencyStopped: "#dc2626",
}

// TrackColor looks up a track status or category
func TrackColor(key string) string {
	if c, ok := trackColors[key]; ok {
		return c
	}
	return DefaultColor
}

// StatusColor looks up a train status
func StatusColor(s models.TrainStatus) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return DefaultColor
}
