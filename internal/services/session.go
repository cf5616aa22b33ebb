package services

import (
	"context"
	"errors"

	"movie-explorer/internal/models"
)

// Session is the filter state of one user. Each change recomputes the views
// from scratch; a change rejected as invalid leaves both the criteria and the
// views as they were. A Session is not safe for concurrent use; give every
// user their own.
type Session struct {
	explorer *ExplorerService
	criteria models.FilterCriteria
	views    models.Views
}

// NewSession starts a session at the default criteria
func NewSession(ctx context.Context, explorer *ExplorerService) (*Session, error) {
	criteria := explorer.DefaultCriteria()
	views, err := explorer.Views(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return &Session{explorer: explorer, criteria: criteria, views: views}, nil
}

// Criteria returns the criteria of the current views
func (s *Session) Criteria() models.FilterCriteria {
	return s.criteria
}

// Views returns the last valid views
func (s *Session) Views() models.Views {
	return s.views
}

// Update applies change to a copy of the current criteria and recomputes.
// On InvalidCriteria the previous state is kept and the error is returned
// for display.
func (s *Session) Update(ctx context.Context, change func(*models.FilterCriteria)) (models.Views, error) {
	next := s.criteria
	change(&next)

	views, err := s.explorer.Views(ctx, next)
	if err != nil {
		var invalid *models.InvalidCriteriaError
		if errors.As(err, &invalid) {
			s.explorer.metrics.RecordInvalidCriteria("session")
		}
		return s.views, err
	}

	s.criteria = next
	s.views = views
	return views, nil
}

// Reset returns to the default criteria
func (s *Session) Reset(ctx context.Context) (models.Views, error) {
	defaults := s.explorer.DefaultCriteria()
	return s.Update(ctx, func(c *models.FilterCriteria) { *c = defaults })
}
