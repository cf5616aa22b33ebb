package services

import (
	"context"
	"fmt"
	"time"

	"movie-explorer/internal/engine"
	"movie-explorer/internal/models"
	"movie-explorer/internal/repository"
	"movie-explorer/pkg/logging"
	"movie-explorer/pkg/metrics"
)

// Catalog is the loaded, read-only dataset together with the filter options
// derived from it at load time.
type Catalog struct {
	Dataset  *engine.Dataset
	Options  models.Options
	Source   string
	LoadedAt time.Time
}

// CatalogService loads the catalog once at startup
type CatalogService struct {
	normalizer *NormalizationService
	logger     *logging.ContextLogger
	metrics    *metrics.Collector
}

// NewCatalogService creates a new catalog service
func NewCatalogService(normalizer *NormalizationService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *CatalogService {
	return &CatalogService{
		normalizer: normalizer,
		logger:     logger.WithFields(logging.Fields{"component": "catalog"}),
		metrics:    metricsCollector,
	}
}

// Load reads and normalizes the source, then derives the options.
// A source with no usable record is a ConfigurationError: no control could
// have a default value. The normalization report is returned in every case
// where the source could be read.
func (s *CatalogService) Load(ctx context.Context, source repository.MovieSource) (*Catalog, *NormalizationResult, error) {
	timer := s.metrics.NewTimer(s.metrics.DatasetLoadDuration)

	s.logger.Info(ctx, "[CATALOG_LOAD_START] Loading movie catalog", logging.Fields{
		"source": source.Describe(),
	})

	rows, err := source.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	report := s.normalizer.Normalize(ctx, source.Describe(), rows)
	if len(report.Records) == 0 {
		return nil, report, &models.ConfigurationError{
			Source:  source.Describe(),
			Message: fmt.Sprintf("dataset is empty (%d rows read, %d rejected)", report.TotalRows, report.RejectedRows),
		}
	}

	dataset := engine.NewDataset(report.Records)
	catalog := &Catalog{
		Dataset:  dataset,
		Options:  engine.DeriveOptions(dataset),
		Source:   source.Describe(),
		LoadedAt: time.Now().UTC(),
	}

	duration := timer.ObserveDuration()
	s.metrics.DatasetRecords.Set(float64(dataset.Len()))

	s.logger.Info(ctx, "[CATALOG_LOAD_COMPLETE] Movie catalog loaded", logging.Fields{
		"source":        catalog.Source,
		"records":       dataset.Len(),
		"score_options": len(catalog.Options.ScoreOptions),
		"oscar_options": len(catalog.Options.OscarOptions),
		"date_min":      catalog.Options.DateMin.Format(engine.DateLayout),
		"date_max":      catalog.Options.DateMax.Format(engine.DateLayout),
		"duration_ms":   duration.Milliseconds(),
	})

	return catalog, report, nil
}
