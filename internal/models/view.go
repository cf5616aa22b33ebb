package models

import (
	"fmt"
	"strings"
	"time"
)

// FilterCriteria is the live filter state driving one recomputation.
// DateStart <= DateEnd is the caller's concern; the engine does not check it.
type FilterCriteria struct {
	MinMetacriticScore float64   `json:"min_metacritic_score"`
	MinOscarsWon       int       `json:"min_oscars_won"`
	DateStart          time.Time `json:"date_start"`
	DateEnd            time.Time `json:"date_end"`
}

// Axis selects the extra predicate applied on top of the date range.
type Axis string

const (
	AxisScore  Axis = "score"
	AxisOscars Axis = "oscars"
)

// FilteredView is an ordered subset of the dataset: ascending release date,
// ties kept in dataset order.
type FilteredView []MovieRecord

// AwardBucket is one (oscars won, movie count) pair of a histogram.
type AwardBucket struct {
	OscarsWon int `json:"oscars_won"`
	Count     int `json:"count"`
}

// AwardHistogram holds buckets in strictly ascending OscarsWon order,
// only for values that occur.
type AwardHistogram []AwardBucket

// Total returns the number of movies counted across all buckets.
func (h AwardHistogram) Total() int {
	total := 0
	for _, b := range h {
		total += b.Count
	}
	return total
}

// ScorePoint is one marker of the score-over-time series.
type ScorePoint struct {
	ReleaseDate     time.Time `json:"release_date"`
	MetacriticScore float64   `json:"metacritic_score"`
	Title           string    `json:"title"`
}

// OscarSeries is the award histogram as parallel columns for a bar chart.
type OscarSeries struct {
	OscarsWon []int `json:"oscars_won"`
	Count     []int `json:"count"`
}

// Views is the output contract handed to rendering layers.
type Views struct {
	ScoreSeries []ScorePoint `json:"score_series"`
	OscarSeries OscarSeries  `json:"oscar_series"`
}

// Options bounds the legal values of each filter control.
// DateMin and DateMax are zero when derived from an empty dataset.
type Options struct {
	ScoreOptions []float64 `json:"score_options"`
	OscarOptions []int     `json:"oscar_options"`
	DateMin      time.Time `json:"date_min"`
	DateMax      time.Time `json:"date_max"`
}

// HasDateRange reports whether the date bounds are defined.
func (o Options) HasDateRange() bool {
	return !o.DateMin.IsZero() && !o.DateMax.IsZero()
}

// ConfigurationError means the system cannot start, e.g. an empty dataset.
type ConfigurationError struct {
	Source  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Source == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Source, e.Message)
}

// IsTransient returns false: reloading the same source yields the same result
func (e *ConfigurationError) IsTransient() bool {
	return false
}

// InvalidCriteriaError lists every problem found in a FilterCriteria value.
type InvalidCriteriaError struct {
	Problems []string
}

func (e *InvalidCriteriaError) Error() string {
	return "invalid criteria: " + strings.Join(e.Problems, "; ")
}

// IsTransient returns false as the same criteria will always be rejected
func (e *InvalidCriteriaError) IsTransient() bool {
	return false
}

// FigureMeta carries the labels a renderer puts around one series.
type FigureMeta struct {
	Title string `json:"title"`
	XAxis string `json:"x_axis"`
	YAxis string `json:"y_axis"`
}

var (
	ScoreFigure = FigureMeta{
		Title: "Metacritic Score Over Time",
		XAxis: "Release Date",
		YAxis: "Metacritic Score",
	}
	OscarFigure = FigureMeta{
		Title: "Number of Movies by Oscars Won",
		XAxis: "Oscars Won",
		YAxis: "Number of Movies",
	}
)
