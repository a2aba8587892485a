// Package common wires the shared dependencies every subcommand needs:
// configuration, logging, the record store, and metrics.
package common

import (
	"fmt"

	"github.com/oai-harvest/harvester/internal/config"
	"github.com/oai-harvest/harvester/internal/logger"
	"github.com/oai-harvest/harvester/internal/metrics"
	"github.com/oai-harvest/harvester/internal/store"
)

// CommandDeps holds the dependencies shared across every subcommand.
type CommandDeps struct {
	Logger  logger.Interface
	Config  *config.Config
	Store   *store.Store
	Metrics *metrics.Metrics
}

// NewCommandDeps loads configuration, builds a logger, opens the record
// store, and registers metrics. Callers must Close the returned deps.
func NewCommandDeps() (*CommandDeps, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logger.ToLoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	if err := cfg.ValidateDatabase(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	return &CommandDeps{
		Logger:  log,
		Config:  cfg,
		Store:   st,
		Metrics: metrics.New(),
	}, nil
}

// Close releases the dependencies' resources.
func (d *CommandDeps) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
