// Package app wires configuration to a loaded catalog for the server and the CLI.
package app

import (
	"context"
	"fmt"

	"movie-explorer/internal/config"
	"movie-explorer/internal/repository"
	"movie-explorer/internal/services"
	"movie-explorer/pkg/database"
	"movie-explorer/pkg/logging"
	"movie-explorer/pkg/metrics"
)

// Version is reported in logs and by the CLI
const Version = "1.0.0"

// OpenSource builds the MovieSource selected by cfg.Dataset.Source. The
// returned close function releases any database connection and is never nil.
func OpenSource(ctx context.Context, cfg *config.Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (repository.MovieSource, func(), error) {
	noop := func() {}

	switch cfg.Dataset.Source {
	case config.SourceCSV:
		return repository.NewCSVSource(cfg.Dataset.Path, logger), noop, nil

	case config.SourcePostgres, config.SourceMySQL, config.SourceSQLite:
		db, err := database.Open(ctx, cfg.DatabaseConfig(), logger, metricsCollector)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to %s: %w", cfg.Dataset.Source, err)
		}
		closeDB := func() { _ = db.Close() }

		source, err := repository.NewSQLSource(db, cfg.Dataset.Table, logger)
		if err != nil {
			closeDB()
			return nil, noop, err
		}
		return source, closeDB, nil

	default:
		return nil, noop, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}

// LoadCatalog opens the configured source, loads the catalog and releases the
// source. The dataset is read-only afterwards, so no connection is kept.
func LoadCatalog(ctx context.Context, cfg *config.Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*services.Catalog, *services.NormalizationResult, error) {
	source, closeSource, err := OpenSource(ctx, cfg, logger, metricsCollector)
	if err != nil {
		return nil, nil, err
	}
	defer closeSource()

	normalizer := services.NewNormalizationService(logger, metricsCollector)
	return services.NewCatalogService(normalizer, logger, metricsCollector).Load(ctx, source)
}

// NewExplorer loads the catalog and builds the explorer service over it
func NewExplorer(ctx context.Context, cfg *config.Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*services.ExplorerService, *services.Catalog, error) {
	catalog, _, err := LoadCatalog(ctx, cfg, logger, metricsCollector)
	if err != nil {
		return nil, nil, err
	}
	return services.NewExplorerService(catalog, cfg.Filters.StrictBounds, logger, metricsCollector), catalog, nil
}
