// Package store implements the record store (§3) and its phase queries
// (§4.2): the durable table keyed by (endpoint, metadata_prefix, identifier)
// and the fixed catalogue of parameterised selects/transitions the worker
// loops and phases are built on.
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver

	dbconfig "github.com/oai-harvest/harvester/internal/config/database"
)

// BatchSize is the fixed page size for every keyset-paginated selection
// query (§4.2, §4.3).
const BatchSize = 100

// Store wraps the record-store connection pool.
type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres and returns a ready Store.
func Open(cfg *dbconfig.Config) (*Store, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to record store: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = dbconfig.DefaultMaxOpenConns
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(dbconfig.DefaultMaxIdleConns)
	db.SetConnMaxLifetime(dbconfig.DefaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbconfig.DefaultPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping record store: %w", err)
	}

	return &Store{db: db}, nil
}

// New wraps an already-open sqlx.DB (or sqlmock-backed one, for tests).
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
