package services

import (
	"context"

	"movie-explorer/internal/engine"
	"movie-explorer/internal/models"
	"movie-explorer/pkg/logging"
	"movie-explorer/pkg/metrics"
)

// ExplorerService answers filter requests against a loaded catalog.
// It holds no per-request state and is safe for concurrent use.
type ExplorerService struct {
	catalog      *Catalog
	strictBounds bool
	logger       *logging.ContextLogger
	metrics      *metrics.Collector
}

// NewExplorerService creates a new explorer service
func NewExplorerService(catalog *Catalog, strictBounds bool, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ExplorerService {
	return &ExplorerService{
		catalog:      catalog,
		strictBounds: strictBounds,
		logger:       logger.WithFields(logging.Fields{"component": "explorer"}),
		metrics:      metricsCollector,
	}
}

// Options returns the options derived at load time
func (s *ExplorerService) Options() models.Options {
	return s.catalog.Options
}

// DefaultCriteria returns the initial filter state
func (s *ExplorerService) DefaultCriteria() models.FilterCriteria {
	return engine.DefaultCriteria(s.catalog.Options)
}

// Validate checks criteria against the derived options
func (s *ExplorerService) Validate(c models.FilterCriteria) error {
	return engine.Validate(c, s.catalog.Options, s.strictBounds)
}

// Views validates c and runs one recomputation cycle.
// Invalid criteria return an *models.InvalidCriteriaError and no views.
func (s *ExplorerService) Views(ctx context.Context, c models.FilterCriteria) (models.Views, error) {
	if err := s.Validate(c); err != nil {
		s.logger.Debug(ctx, "[EXPLORER_INVALID_CRITERIA] Criteria rejected", logging.Fields{
			"reason": err.Error(),
		})
		return models.Views{}, err
	}

	timer := s.metrics.NewTimer(s.metrics.RecomputeDuration)

	views := engine.Compute(s.catalog.Dataset, c)

	duration := timer.ObserveDuration()
	oscarMovies := 0
	for _, n := range views.OscarSeries.Count {
		oscarMovies += n
	}
	s.metrics.RecordViewSizes(len(views.ScoreSeries), oscarMovies)

	s.logger.Debug(ctx, "[EXPLORER_RECOMPUTE] Views recomputed", logging.Fields{
		"min_score":    c.MinMetacriticScore,
		"min_oscars":   c.MinOscarsWon,
		"date_start":   c.DateStart.Format(engine.DateLayout),
		"date_end":     c.DateEnd.Format(engine.DateLayout),
		"score_points": len(views.ScoreSeries),
		"oscar_movies": oscarMovies,
		"duration_us":  duration.Microseconds(),
	})

	return views, nil
}

// Movies returns one page of the catalog and the catalog size
func (s *ExplorerService) Movies(offset, limit int) ([]models.MovieRecord, int) {
	return s.catalog.Dataset.Page(offset, limit), s.catalog.Dataset.Len()
}
