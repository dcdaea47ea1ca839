package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/rath-twin/rath/internal/config"
	"github.com/rath-twin/rath/internal/network"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg := config.Load()
	source := flag.String("source", config.SourceSQLite, "Target store: sqlite or postgres")
	dbPath := flag.String("db", cfg.DatabasePath, "Path to SQLite database")
	flag.Parse()

	cfg.NetworkSource = *source
	cfg.DatabasePath = *dbPath

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := network.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.NetworkSource, err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	n := network.Builtin()
	if err := n.Validate(); err != nil {
		log.Fatalf("Builtin network is invalid: %v", err)
	}

	seedID, err := repo.Save(ctx, n)
	if err != nil {
		log.Fatalf("Failed to save network: %v", err)
	}
	log.Printf("Seeded %d stations, %d tracks, %d trains into %s (seed %s)",
		len(n.Stations), len(n.Tracks), len(n.Trains), cfg.NetworkSource, seedID)
}
