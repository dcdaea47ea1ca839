package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rath-twin/rath/internal/config"
	"github.com/rath-twin/rath/internal/geometry"
	"github.com/rath-twin/rath/internal/network"
	"github.com/rath-twin/rath/internal/occupancy"
	"github.com/rath-twin/rath/internal/simulation"
)

// Position is one output row
type Position struct {
	TrainID  string  `json:"trainId"`
	Track    string  `json:"track"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
	GPS      string  `json:"gps"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")
	cfg := config.Load()

	ticks := flag.Int("ticks", 0, "Number of ticks to simulate")
	increment := flag.Float64("increment", cfg.TickIncrement, "Progress added per tick")
	stop := flag.String("stop", "", "Comma separated train ids to emergency-stop before ticking")
	asJSON := flag.Bool("json", false, "Print JSON instead of a table")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := network.Load(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load network: %v", err)
	}

	model := simulation.NewModel(n, *increment, simulation.NewRandomScorer(cfg.RandomSeed))
	for _, id := range strings.Split(*stop, ",") {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if err := model.EmergencyStop(id); err != nil {
			log.Fatalf("Failed to stop train: %v", err)
		}
	}
	for i := 0; i < *ticks; i++ {
		model.Tick()
	}

	frame := geometry.Frame{
		OriginLat:     cfg.FeedOriginLat,
		OriginLon:     cfg.FeedOriginLon,
		MetersPerUnit: cfg.FeedMetersPerUnit,
	}
	trains := model.LiveTrains()
	view := occupancy.Derive(n, trains)

	positions := make([]Position, 0, len(view.GPS))
	for _, g := range view.GPS {
		t := trains[g.Index]
		lat, lon := frame.ToLatLon(geometry.Point{X: g.X, Y: g.Y})
		positions = append(positions, Position{
			TrainID:  t.ID,
			Track:    t.Track,
			Progress: t.Progress,
			Status:   string(t.Status),
			GPS:      g.Coordinates,
			Lat:      lat,
			Lon:      lon,
		})
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(positions); err != nil {
			log.Fatalf("Failed to encode positions: %v", err)
		}
		return
	}

	log.Printf("Positions after %d ticks (increment %g)", *ticks, *increment)
	for _, p := range positions {
		fmt.Printf("%-6s %-4s %.4f %-18s %s  %.6f,%.6f\n", p.TrainID, p.Track, p.Progress, p.Status, p.GPS, p.Lat, p.Lon)
	}
	for _, s := range view.Occupied() {
		fmt.Printf("Track %d (%s): %s\n", s.Index, s.TrackID, s.Summary())
	}
	fmt.Printf("Empty tracks: %s\n", view.EmptyList())
}
