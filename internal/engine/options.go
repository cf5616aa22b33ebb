package engine

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"movie-explorer/internal/models"
)

// DeriveOptions computes the legal values of each filter control from the
// full dataset. It is meant to run once at load time; the options never
// shrink as filters are applied.
func DeriveOptions(d *Dataset) models.Options {
	scores := make(map[float64]struct{})
	oscars := make(map[int]struct{})

	opts := models.Options{}
	for i, r := range d.records {
		if r.MetacriticScore != nil {
			scores[*r.MetacriticScore] = struct{}{}
		}
		oscars[r.OscarsWon] = struct{}{}

		if i == 0 || r.ReleaseDate.Before(opts.DateMin) {
			opts.DateMin = r.ReleaseDate
		}
		if i == 0 || r.ReleaseDate.After(opts.DateMax) {
			opts.DateMax = r.ReleaseDate
		}
	}

	opts.ScoreOptions = slices.Sorted(maps.Keys(scores))
	opts.OscarOptions = slices.Sorted(maps.Keys(oscars))
	if opts.ScoreOptions == nil {
		opts.ScoreOptions = []float64{}
	}
	if opts.OscarOptions == nil {
		opts.OscarOptions = []int{}
	}
	return opts
}

// DefaultCriteria is the initial filter state: the smallest option of each
// dropdown and the full date range. With no scored movies the minimum score
// defaults to 0.
func DefaultCriteria(o models.Options) models.FilterCriteria {
	c := models.FilterCriteria{
		DateStart: o.DateMin,
		DateEnd:   o.DateMax,
	}
	if len(o.ScoreOptions) > 0 {
		c.MinMetacriticScore = o.ScoreOptions[0]
	}
	if len(o.OscarOptions) > 0 {
		c.MinOscarsWon = o.OscarOptions[0]
	}
	return c
}

// Validate checks c before it reaches the engine. A minimum score that is not
// a finite number and an inverted date range are always rejected. With strict set, values outside the option bounds are
// rejected as well; otherwise they are valid input that may give empty views.
func Validate(c models.FilterCriteria, o models.Options, strict bool) error {
	var problems []string

	if math.IsNaN(c.MinMetacriticScore) || math.IsInf(c.MinMetacriticScore, 0) {
		problems = append(problems, fmt.Sprintf("min score %g is not a finite number", c.MinMetacriticScore))
	}

	if c.DateStart.After(c.DateEnd) {
		problems = append(problems, fmt.Sprintf("date start %s is after date end %s",
			c.DateStart.Format(DateLayout), c.DateEnd.Format(DateLayout)))
	}

	if strict {
		if n := len(o.ScoreOptions); n > 0 && (c.MinMetacriticScore < o.ScoreOptions[0] || c.MinMetacriticScore > o.ScoreOptions[n-1]) {
			problems = append(problems, fmt.Sprintf("min score %g outside [%g, %g]",
				c.MinMetacriticScore, o.ScoreOptions[0], o.ScoreOptions[n-1]))
		}
		if n := len(o.OscarOptions); n > 0 && (c.MinOscarsWon < o.OscarOptions[0] || c.MinOscarsWon > o.OscarOptions[n-1]) {
			problems = append(problems, fmt.Sprintf("min oscars %d outside [%d, %d]",
				c.MinOscarsWon, o.OscarOptions[0], o.OscarOptions[n-1]))
		}
		if o.HasDateRange() && (c.DateStart.Before(o.DateMin) || c.DateEnd.After(o.DateMax)) {
			problems = append(problems, fmt.Sprintf("date range outside [%s, %s]",
				o.DateMin.Format(DateLayout), o.DateMax.Format(DateLayout)))
		}
	}

	if len(problems) > 0 {
		return &models.InvalidCriteriaError{Problems: problems}
	}
	return nil
}

// DateLayout is the wire format of filter dates.
const DateLayout = "2006-01-02"
