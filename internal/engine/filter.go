package engine

import (
	"movie-explorer/internal/models"
)

// Filter returns the records matching every predicate of c for the axis.
//
// The date range is always applied, inclusive at both ends. AxisScore
// additionally requires a present score >= c.MinMetacriticScore; AxisOscars
// requires OscarsWon >= c.MinOscarsWon. Any other axis applies the date range
// only. Input order is preserved. An empty result is a valid view.
func Filter(records []models.MovieRecord, c models.FilterCriteria, axis models.Axis) models.FilteredView {
	view := make(models.FilteredView, 0, len(records))
	for _, r := range records {
		if !inDateRange(r, c) {
			continue
		}
		switch axis {
		case models.AxisScore:
			if r.MetacriticScore == nil || *r.MetacriticScore < c.MinMetacriticScore {
				continue
			}
		case models.AxisOscars:
			if r.OscarsWon < c.MinOscarsWon {
				continue
			}
		}
		view = append(view, r)
	}
	return view
}

// Filter applies Filter to the whole dataset.
func (d *Dataset) Filter(c models.FilterCriteria, axis models.Axis) models.FilteredView {
	return Filter(d.records, c, axis)
}

func inDateRange(r models.MovieRecord, c models.FilterCriteria) bool {
	return !r.ReleaseDate.Before(c.DateStart) && !r.ReleaseDate.After(c.DateEnd)
}
