// Package feed exports the live dashboard state as a GTFS-Realtime feed so
// that standard transit tooling can consume the simulation.
package feed

import (
	"fmt"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/rath-twin/rath/internal/dashboard"
	"github.com/rath-twin/rath/internal/geometry"
	"github.com/rath-twin/rath/internal/models"
)

const gtfsRealtimeVersion = "2.0"

// ContentType is the media type served for encoded feeds
const ContentType = "application/x-protobuf"

// Builder turns snapshots into feed messages
type Builder struct {
	Frame geometry.Frame
}

func NewBuilder(frame geometry.Frame) *Builder {
	return &Builder{Frame: frame}
}

// Build creates a full-dataset feed: one vehicle per train, one trip update
// per train with a non-zero delay, and one alert per active alert.
func (b *Builder) Build(snap *dashboard.Snapshot) *gtfs.FeedMessage {
	ts := uint64(snap.TakenAt.Unix())
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String(gtfsRealtimeVersion),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(ts),
		},
	}

	for _, t := range snap.Trains {
		msg.Entity = append(msg.Entity, b.vehicleEntity(snap, t, ts))
	}
	for _, t := range snap.Trains {
		if t.Delay > 0 {
			msg.Entity = append(msg.Entity, tripUpdateEntity(t, ts))
		}
	}
	for _, a := range snap.Alerts {
		msg.Entity = append(msg.Entity, alertEntity(a))
	}
	return msg
}

// Encode builds and marshals the feed
func (b *Builder) Encode(snap *dashboard.Snapshot) ([]byte, error) {
	data, err := proto.Marshal(b.Build(snap))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feed: %w", err)
	}
	return data, nil
}

func tripDescriptor(t models.LiveTrain) *gtfs.TripDescriptor {
	return &gtfs.TripDescriptor{
		TripId:  proto.String(t.ID),
		RouteId: proto.String(t.Track),
	}
}

func vehicleDescriptor(t models.LiveTrain) *gtfs.VehicleDescriptor {
	return &gtfs.VehicleDescriptor{
		Id:    proto.String(t.ID),
		Label: proto.String(t.Name),
	}
}

func (b *Builder) vehicleEntity(snap *dashboard.Snapshot, t models.LiveTrain, ts uint64) *gtfs.FeedEntity {
	vp := &gtfs.VehiclePosition{
		Trip:          tripDescriptor(t),
		Vehicle:       vehicleDescriptor(t),
		CurrentStatus: gtfs.VehiclePosition_IN_TRANSIT_TO.Enum(),
		Timestamp:     proto.Uint64(ts),
	}
	if t.IsStopped() {
		vp.CurrentStatus = gtfs.VehiclePosition_STOPPED_AT.Enum()
	}

	if snap.Network != nil {
		if from, to, ok := snap.Network.TrackEnds(t.Track); ok {
			lat, lon := b.Frame.ToLatLon(geometry.Interpolate(from, to, t.Progress))
			fromLat, fromLon := b.Frame.ToLatLon(from)
			toLat, toLon := b.Frame.ToLatLon(to)
			vp.Position = &gtfs.Position{
				Latitude:  proto.Float32(float32(lat)),
				Longitude: proto.Float32(float32(lon)),
				Bearing:   proto.Float32(float32(geometry.Bearing(fromLat, fromLon, toLat, toLon))),
				Speed:     proto.Float32(float32(t.Speed / 3.6)),
			}
			if track, ok := snap.Network.Track(t.Track); ok {
				vp.StopId = proto.String(track.To)
			}
		}
	}

	return &gtfs.FeedEntity{
		Id:      proto.String("vehicle-" + t.ID),
		Vehicle: vp,
	}
}

func tripUpdateEntity(t models.LiveTrain, ts uint64) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String("trip-" + t.ID),
		TripUpdate: &gtfs.TripUpdate{
			Trip:      tripDescriptor(t),
			Vehicle:   vehicleDescriptor(t),
			Timestamp: proto.Uint64(ts),
			Delay:     proto.Int32(int32(t.Delay * 60)),
		},
	}
}

func translated(text string) *gtfs.TranslatedString {
	return &gtfs.TranslatedString{
		Translation: []*gtfs.TranslatedString_Translation{
			{Text: proto.String(text), Language: proto.String("en")},
		},
	}
}

func alertEffect(kind models.AlertKind) *gtfs.Alert_Effect {
	switch kind {
	case models.AlertTrackConflict:
		return gtfs.Alert_NO_SERVICE.Enum()
	case models.AlertDelayed, models.AlertPriorityHold:
		return gtfs.Alert_SIGNIFICANT_DELAYS.Enum()
	default:
		return gtfs.Alert_UNKNOWN_EFFECT.Enum()
	}
}

func alertEntity(a models.Alert) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String("alert-" + a.ID),
		Alert: &gtfs.Alert{
			InformedEntity: []*gtfs.EntitySelector{{
				Trip: &gtfs.TripDescriptor{TripId: proto.String(a.TrainID)},
			}},
			Cause:           gtfs.Alert_UNKNOWN_CAUSE.Enum(),
			Effect:          alertEffect(a.Kind),
			HeaderText:      translated(fmt.Sprintf("%s: %s", a.TrainName, a.Issue)),
			DescriptionText: translated(a.Details),
		},
	}
}
