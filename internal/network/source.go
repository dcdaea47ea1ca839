package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/rath-twin/rath/internal/config"
)

// ErrEmpty is returned when a database holds no network yet
var ErrEmpty = errors.New("network: no stations stored")

// Repository is a persistent home for the static network
type Repository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, n *Network) (string, error)
	Load(ctx context.Context) (*Network, error)
	Close() error
}

// OpenRepository opens the repository selected by cfg.NetworkSource.
// The builtin source has no repository.
func OpenRepository(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.NetworkSource {
	case config.SourceSQLite:
		return OpenSQLite(cfg.DatabasePath)
	case config.SourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres network source")
		}
		return OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("network source %q has no repository", cfg.NetworkSource)
	}
}

// Load returns the network selected by cfg.NetworkSource
func Load(ctx context.Context, cfg *config.Config) (*Network, error) {
	if cfg.NetworkSource == "" || cfg.NetworkSource == config.SourceBuiltin {
		return Builtin(), nil
	}

	repo, err := OpenRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	n, err := repo.Load(ctx)
	if errors.Is(err, ErrEmpty) {
		return nil, fmt.Errorf("%w (run seed-network first)", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load network from %s: %w", cfg.NetworkSource, err)
	}
	return n, nil
}
