package network

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rath-twin/rath/internal/models"
)

// schemaSQL is the single source of truth for the network schema.
//
//go:embed schema.sql
var schemaSQL string

// SchemaSQL returns the embedded schema for external use (e.g., init scripts).
func SchemaSQL() string {
	return schemaSQL
}

// SQLiteRepository stores the network in a SQLite file
type SQLiteRepository struct {
	db      *sql.DB
	writeMu sync.Mutex // serializes writes; SQLite has a single writer
}

// OpenSQLite opens a SQLite database with WAL mode enabled
func OpenSQLite(dbPath string) (*SQLiteRepository, error) {
	dsn := dbPath + "?_journal=WAL&_fk=1&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates tables if they don't exist
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save replaces the stored network with n and returns the seed id
func (r *SQLiteRepository) Save(ctx context.Context, n *Network) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"network_stations", "network_tracks", "network_trains", "network_advisories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return "", fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, s := range n.Stations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO network_stations (station_id, name, x, y, category, platforms, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Name, s.X, s.Y, string(s.Category), s.Platforms, i,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert station %s: %w", s.ID, err)
		}
	}

	for i, t := range n.Tracks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO network_tracks (track_id, from_station, to_station, category, status, length_km, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.From, t.To, string(t.Category), string(t.Status), t.Length, i,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert track %s: %w", t.ID, err)
		}
	}

	for i, t := range n.Trains {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO network_trains (train_id, name, track_id, position, speed, status,
				passengers, delay_minutes, delay_reason, priority, destination, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Name, t.Track, t.Position, t.Speed, string(t.Status),
			t.Passengers, t.Delay, t.DelayReason, t.Priority, t.Destination, i,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert train %s: %w", t.ID, err)
		}
	}

	if a := n.Advisory; a != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO network_advisories (advisory_type, severity, location, visibility, impact)
			VALUES (?, ?, ?, ?, ?)`,
			a.Type, a.Severity, a.Location, a.Visibility, a.Impact,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert advisory: %w", err)
		}
	}

	seedID := uuid.New().String()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO network_seeds (seed_id, seeded_at_utc) VALUES (?, ?)",
		seedID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record seed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit network: %w", err)
	}
	return seedID, nil
}

// Load reads the stored network and validates it
func (r *SQLiteRepository) Load(ctx context.Context) (*Network, error) {
	n := &Network{}

	rows, err := r.db.QueryContext(ctx, `
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

	rows, err = r.db.QueryContext(ctx, `
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

	rows, err = r.db.QueryContext(ctx, `
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
	err = r.db.QueryRowContext(ctx, `
		SELECT advisory_type, severity, location, visibility, impact
		FROM network_advisories LIMIT 1`).Scan(&a.Type, &a.Severity, &a.Location, &a.Visibility, &a.Impact)
	switch {
	case err == sql.ErrNoRows:
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
