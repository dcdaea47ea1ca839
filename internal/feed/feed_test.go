package feed

import (
	"math"
	"testing"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/rath-twin/rath/internal/dashboard"
	"github.com/rath-twin/rath/internal/decision"
	"github.com/rath-twin/rath/internal/geometry"
	"github.com/rath-twin/rath/internal/network"
	"github.com/rath-twin/rath/internal/simulation"
)

var testFrame = geometry.Frame{OriginLat: 13.0827, OriginLon: 80.2707, MetersPerUnit: 10}

func testSnapshot(t *testing.T, stop string) *dashboard.Snapshot {
	t.Helper()
	model := simulation.NewModel(network.Builtin(), simulation.DefaultIncrement, simulation.FixedScorer{Score: 0.9})
	store := dashboard.NewStore(model, decision.NewPanel())
	store.SetClock(func() time.Time { return time.Unix(1740819600, 0) })
	store.ScanAlerts()
	if stop != "" {
		if err := store.EmergencyStop(stop); err != nil {
			t.Fatalf("EmergencyStop: %v", err)
		}
	}
	return store.Snapshot()
}

func decode(t *testing.T, data []byte) *gtfs.FeedMessage {
	t.Helper()
	msg := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(data, msg); err != nil {
		t.Fatalf("feed does not decode: %v", err)
	}
	return msg
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := NewBuilder(testFrame).Encode(testSnapshot(t, ""))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	msg := decode(t, data)

	if msg.GetHeader().GetGtfsRealtimeVersion() != "2.0" {
		t.Errorf("version = %q", msg.GetHeader().GetGtfsRealtimeVersion())
	}
	if msg.GetHeader().GetTimestamp() != 1740819600 {
		t.Errorf("timestamp = %d", msg.GetHeader().GetTimestamp())
	}

	var vehicles, trips, alerts int
	for _, e := range msg.Entity {
		switch {
		case e.Vehicle != nil:
			vehicles++
		case e.TripUpdate != nil:
			trips++
		case e.Alert != nil:
			alerts++
		}
	}
	if vehicles != 5 || trips != 3 || alerts != 3 {
		t.Errorf("entities: %d vehicles, %d trip updates, %d alerts; expected 5, 3, 3", vehicles, trips, alerts)
	}
}

func TestVehiclePosition(t *testing.T) {
	msg := NewBuilder(testFrame).Build(testSnapshot(t, "TR005"))

	first := msg.Entity[0]
	if first.GetId() != "vehicle-TR001" {
		t.Fatalf("first entity = %s", first.GetId())
	}
	vp := first.GetVehicle()
	wantLat, wantLon := testFrame.ToLatLon(geometry.Point{X: 280, Y: 240})
	if math.Abs(float64(vp.GetPosition().GetLatitude())-wantLat) > 1e-4 ||
		math.Abs(float64(vp.GetPosition().GetLongitude())-wantLon) > 1e-4 {
		t.Errorf("position = (%v, %v), expected (%v, %v)",
			vp.GetPosition().GetLatitude(), vp.GetPosition().GetLongitude(), wantLat, wantLon)
	}
	if vp.GetStopId() != "B" || vp.GetCurrentStatus() != gtfs.VehiclePosition_IN_TRANSIT_TO {
		t.Errorf("stop %s status %v", vp.GetStopId(), vp.GetCurrentStatus())
	}
	if math.Abs(float64(vp.GetPosition().GetSpeed())-85/3.6) > 1e-3 {
		t.Errorf("speed = %v m/s", vp.GetPosition().GetSpeed())
	}

	stopped := msg.Entity[4].GetVehicle()
	if stopped.GetCurrentStatus() != gtfs.VehiclePosition_STOPPED_AT || stopped.GetPosition().GetSpeed() != 0 {
		t.Errorf("stopped vehicle = %v speed %v", stopped.GetCurrentStatus(), stopped.GetPosition().GetSpeed())
	}
}

func TestTripUpdatesAndAlerts(t *testing.T) {
	msg := NewBuilder(testFrame).Build(testSnapshot(t, ""))

	delays := map[string]int32{}
	headers := map[string]string{}
	for _, e := range msg.Entity {
		if tu := e.GetTripUpdate(); tu != nil {
			delays[tu.GetTrip().GetTripId()] = tu.GetDelay()
		}
		if a := e.GetAlert(); a != nil {
			headers[e.GetId()] = a.GetHeaderText().GetTranslation()[0].GetText()
		}
	}

	want := map[string]int32{"TR002": 900, "TR003": 1800, "TR004": 480}
	for id, d := range want {
		if delays[id] != d {
			t.Errorf("%s delay = %d, expected %d", id, delays[id], d)
		}
	}
	if h := headers["alert-TR002"]; h != "Local Beta: Delayed (+15 min)" {
		t.Errorf("TR002 alert header = %q", h)
	}
}
