package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rath-twin/rath/internal/models"
)

// PostgresRepository stores the network in Postgres
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and pings it
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// EnsureSchema creates tables if they don't exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save replaces the stored network with n and returns the seed id
func (r *PostgresRepository) Save(ctx context.Context, n *Network) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"network_stations", "network_tracks", "network_trains", "network_advisories"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return "", fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	batch := &pgx.Batch{}
	for i, s := range n.Stations {
		batch.Queue(`
			INSERT INTO network_stations (station_id, name, x, y, category, platforms, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, s.Name, s.X, s.Y, string(s.Category), s.Platforms, i)
	}
	for i, t := range n.Tracks {
		batch.Queue(`
			INSERT INTO network_tracks (track_id, from_station, to_station, category, status, length_km, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, t.From, t.To, string(t.Category), string(t.Status), t.Length, i)
	}
	for i, t := range n.Trains {
		batch.Queue(`
			INSERT INTO network_trains (train_id, name, track_id, position, speed, status,
				passengers, delay_minutes, delay_reason, priority, destination, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			t.ID, t.Name, t.Track, t.Position, t.Speed, string(t.Status),
			t.Passengers, t.Delay, t.DelayReason, t.Priority, t.Destination, i)
	}
	if a := n.Advisory; a != nil {
		batch.Queue(`
			INSERT INTO network_advisories (advisory_type, severity, location, visibility, impact)
			VALUES ($1, $2, $3, $4, $5)`,
			a.Type, a.Severity, a.Location, a.Visibility, a.Impact)
	}
	seedID := uuid.New().String()
	batch.Queue("INSERT INTO network_seeds (seed_id, seeded_at_utc) VALUES ($1, $2)",
		seedID, time.Now().UTC().Format(time.RFC3339))

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return "", fmt.Errorf("failed to insert network: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit network: %w", err)
	}
	return seedID, nil
}

// Load reads the stored network and validates it
func (r *PostgresRepository) Load(ctx context.Context) (*Network, error) {
	n := &Network{}

	rows, err := r.pool.Query(ctx, `
		SELECT station_id, name, x, y, category, platforms
		FROM network_stations
		ORDER BY sort_order, station_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	for rows.Next() {
		var s models.Station
		var category string
		if err := rows.Scan(&s.ID, &s.Name, &s.X, &s.Y, &category, &s.Platforms); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		s.Category = models.StationCategory(category)
		n.Stations = append(n.Stations, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating station rows: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT track_id, from_station, to_station, category, status, length_km
		FROM network_tracks
		ORDER BY sort_order, track_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	for rows.Next() {
		var t models.Track
		var category, status string
		if err := rows.Scan(&t.ID, &t.From, &t.To, &category, &status, &t.Length); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		t.Category = models.TrackCategory(category)
		t.Status = models.TrackStatus(status)
		n.Tracks = append(n.Tracks, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating track rows: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT train_id, name, track_id, position, speed, status,
			passengers, delay_minutes, delay_reason, priority, destination
		FROM network_trains
		ORDER BY sort_order, train_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trains: %w", err)
	}
	for rows.Next() {
		var t models.Train
		var status string
		err := rows.Scan(&t.ID, &t.Name, &t.Track, &t.Position, &t.Speed, &status,
			&t.Passengers, &t.Delay, &t.DelayReason, &t.Priority, &t.Destination)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan train row: %w", err)
		}
		t.Status = models.TrainStatus(status)
		n.Trains = append(n.Trains, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating train rows: %w", err)
	}

	var a models.Advisory
	err = r.pool.QueryRow(ctx, `
		SELECT advisory_type, severity, location, visibility, impact
		FROM network_advisories LIMIT 1`).Scan(&a.Type, &a.Severity, &a.Location, &a.Visibility, &a.Impact)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to query advisory: %w", err)
	default:
		n.Advisory = &a
	}

	if len(n.Stations) == 0 {
		return nil, ErrEmpty
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}
