package services

import (
	"context"
	"errors"
	"time"

	"movie-explorer/internal/models"
	"movie-explorer/pkg/logging"
	"movie-explorer/pkg/metrics"
)

// NormalizationService turns raw source rows into validated records
type NormalizationService struct {
	logger  *logging.ContextLogger
	metrics *metrics.Collector
}

// NormalizationResult contains normalization statistics
type NormalizationResult struct {
	Source       string
	TotalRows    int
	AcceptedRows int
	RejectedRows int
	MissingScore int
	Duration     time.Duration
	Errors       []string
	Records      []models.MovieRecord `json:"-"`
}

// NewNormalizationService creates a new normalization service
func NewNormalizationService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *NormalizationService {
	return &NormalizationService{
		logger:  logger.WithFields(logging.Fields{"component": "normalizer"}),
		metrics: metricsCollector,
	}
}

// Normalize converts every row, keeping the good ones in source order and
// reporting the rejected ones. It never fails as a whole: an all-rejected
// input yields an empty record set for the caller to judge.
func (s *NormalizationService) Normalize(ctx context.Context, source string, rows []models.RawMovieRecord) *NormalizationResult {
	startTime := time.Now()

	result := &NormalizationResult{
		Source:    source,
		TotalRows: len(rows),
		Errors:    make([]string, 0),
		Records:   make([]models.MovieRecord, 0, len(rows)),
	}

	for i := range rows {
		record, err := rows[i].ToRecord()
		if err != nil {
			result.RejectedRows++
			result.Errors = append(result.Errors, err.Error())

			field := "unknown"
			var vErr *models.ValidationError
			if errors.As(err, &vErr) {
				field = vErr.Field
			}
			s.metrics.RecordNormalizationError(field)

			s.logger.Debug(ctx, "[NORMALIZE_ROW_REJECTED] Row rejected", logging.Fields{
				"source": source,
				"line":   rows[i].Line,
				"field":  field,
				"reason": err.Error(),
			})
			continue
		}

		if !record.HasScore() {
			result.MissingScore++
		}
		result.AcceptedRows++
		result.Records = append(result.Records, *record)
	}

	result.Duration = time.Since(startTime)
	s.metrics.RecordNormalization(result.AcceptedRows, result.RejectedRows)

	fields := logging.Fields{
		"source":        source,
		"total_rows":    result.TotalRows,
		"accepted_rows": result.AcceptedRows,
		"rejected_rows": result.RejectedRows,
		"missing_score": result.MissingScore,
		"duration_ms":   result.Duration.Milliseconds(),
	}
	if result.RejectedRows > 0 {
		s.logger.Warn(ctx, "[NORMALIZE_COMPLETE] Normalization finished with rejected rows", fields)
	} else {
		s.logger.Info(ctx, "[NORMALIZE_COMPLETE] Normalization finished", fields)
	}

	return result
}
