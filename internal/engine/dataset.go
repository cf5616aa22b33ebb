// Package engine is the filtering-and-aggregation core: pure functions from a
// read-only movie dataset and a FilterCriteria value to the derived views.
// Nothing in this package mutates its inputs, so every function is safe for
// concurrent use against a shared Dataset.
package engine

import (
	"slices"

	"movie-explorer/internal/models"
)

// Dataset is a read-only handle on the normalized catalog.
// Records are held in ascending release-date order, ties in load order.
type Dataset struct {
	records []models.MovieRecord
}

// NewDataset takes ownership of a private copy of records.
// Score pointers are copied too, so later writes through the caller's
// records cannot reach the dataset.
func NewDataset(records []models.MovieRecord) *Dataset {
	owned := make([]models.MovieRecord, len(records))
	for i, r := range records {
		if r.MetacriticScore != nil {
			score := *r.MetacriticScore
			r.MetacriticScore = &score
		}
		r.ReleaseDate = models.ReleaseDateOf(r.ReleaseYear)
		owned[i] = r
	}

	slices.SortStableFunc(owned, func(a, b models.MovieRecord) int {
		return a.ReleaseDate.Compare(b.ReleaseDate)
	})

	return &Dataset{records: owned}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the records in dataset order.
func (d *Dataset) Records() []models.MovieRecord {
	return slices.Clone(d.records)
}

// Page returns up to limit records starting at offset.
func (d *Dataset) Page(offset, limit int) []models.MovieRecord {
	if offset < 0 || offset >= len(d.records) || limit <= 0 {
		return []models.MovieRecord{}
	}
	end := min(offset+limit, len(d.records))
	return slices.Clone(d.records[offset:end])
}
