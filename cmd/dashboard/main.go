package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rath-twin/rath/internal/api"
	"github.com/rath-twin/rath/internal/config"
	"github.com/rath-twin/rath/internal/dashboard"
	"github.com/rath-twin/rath/internal/decision"
	"github.com/rath-twin/rath/internal/feed"
	"github.com/rath-twin/rath/internal/geometry"
	"github.com/rath-twin/rath/internal/logging"
	"github.com/rath-twin/rath/internal/network"
	"github.com/rath-twin/rath/internal/simulation"
)

func main() {
	// Load base .env first, then .env.local (which overrides for local development)
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg := config.Load()
	lg := logging.New(cfg.LogLevel, cfg.LogDir)
	lg.Info("Config loaded",
		"port", cfg.Port,
		"network", cfg.NetworkSource,
		"tick", cfg.TickInterval.String(),
		"increment", cfg.TickIncrement,
		"conflict_delay", cfg.ConflictDelay.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ═══════════════════════════════════════════════════════
	// PHASE 1: Load the network
	// ═══════════════════════════════════════════════════════
	loadCtx, loadCancel := context.WithTimeout(ctx, 10*time.Second)
	n, err := network.Load(loadCtx, cfg)
	loadCancel()
	if err != nil {
		lg.Error("Failed to load network", "error", err)
		os.Exit(1)
	}
	if err := n.Validate(); err != nil {
		lg.Error("Network is invalid", "error", err)
		os.Exit(1)
	}
	lg.Info("Network loaded", "stations", len(n.Stations), "tracks", len(n.Tracks), "trains", len(n.Trains))

	// ═══════════════════════════════════════════════════════
	// PHASE 2: Start the simulation
	// ═══════════════════════════════════════════════════════
	model := simulation.NewModel(n, cfg.TickIncrement, simulation.NewRandomScorer(cfg.RandomSeed))
	store := dashboard.NewStore(model, decision.NewPanel())
	runner := dashboard.NewRunner(store, dashboard.RunnerConfig{
		TickInterval:  cfg.TickInterval,
		ConflictDelay: cfg.ConflictDelay,
	}, lg)
	runner.Start(ctx)

	// ═══════════════════════════════════════════════════════
	// PHASE 3: Serve HTTP
	// ═══════════════════════════════════════════════════════
	builder := feed.NewBuilder(geometry.Frame{
		OriginLat:     cfg.FeedOriginLat,
		OriginLon:     cfg.FeedOriginLon,
		MetersPerUnit: cfg.FeedMetersPerUnit,
	})
	srv := api.NewServer(runner, cfg, builder, lg)
	go srv.Forward(ctx)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("Dashboard server starting", "addr", httpServer.Addr, "run", runner.RunID().String())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("Server failed", "error", err)
			cancel()
		}
	}()

	// ═══════════════════════════════════════════════════════
	// PHASE 4: Graceful Shutdown
	// ═══════════════════════════════════════════════════════
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}

	lg.Info("Shutting down...")
	// Close the event stream first so open SSE connections do not hold Shutdown
	srv.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lg.Warn("HTTP shutdown incomplete", "error", err)
	}
	cancel()
	runner.Stop()
	lg.Info("Goodbye!")
}
