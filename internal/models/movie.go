package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// MovieRecord is one normalized row of the catalog.
// Records are immutable once normalized; MetacriticScore is nil when the
// source had no rating and is never coerced to zero.
type MovieRecord struct {
	Title           string    `json:"title" db:"title"`
	ReleaseYear     int       `json:"release_year" db:"release_year"`
	ReleaseDate     time.Time `json:"release_date"`
	MetacriticScore *float64  `json:"metacritic_score,omitempty" db:"metacritic_score"`
	OscarsWon       int       `json:"oscars_won" db:"oscars_won"`
}

// HasScore reports whether the record carries a Metacritic score.
func (m MovieRecord) HasScore() bool {
	return m.MetacriticScore != nil
}

// ReleaseDateOf returns the year-granularity release date: Jan 1 of year, UTC.
func ReleaseDateOf(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// RawMovieRecord is a single row as read from a source, before normalization.
// Every column is kept as text so CSV and SQL sources share one conversion path.
type RawMovieRecord struct {
	Line            int
	Title           string
	Year            string
	MetacriticScore string
	OscarsWon       string
}

// Column names of the tabular source schema.
const (
	ColumnTitle           = "Title"
	ColumnYear            = "Year"
	ColumnMetacriticScore = "Metacritic Score"
	ColumnOscarsWon       = "Oscars Won"
)

// missingScoreTokens are spellings of "no rating" found in exported datasets.
var missingScoreTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"n/a":  true,
	"na":   true,
	"null": true,
	"none": true,
	"tbd":  true,
	"-":    true,
}

// ToRecord converts a RawMovieRecord into a MovieRecord.
// Missing scores become nil; every other malformed column is rejected with a
// ValidationError so no invalid row ever reaches the engine.
func (r *RawMovieRecord) ToRecord() (*MovieRecord, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, &ValidationError{
			Field:   ColumnTitle,
			Value:   r.Title,
			Line:    r.Line,
			Message: "title must not be empty",
		}
	}

	year, err := parseWholeNumber(r.Year)
	if err != nil || year < 1000 || year > 9999 {
		return nil, &ValidationError{
			Field:   ColumnYear,
			Value:   r.Year,
			Line:    r.Line,
			Message: "invalid year, expected a 4-digit integer",
		}
	}

	rec := &MovieRecord{
		Title:       title,
		ReleaseYear: year,
		ReleaseDate: ReleaseDateOf(year),
	}

	rawScore := strings.TrimSpace(r.MetacriticScore)
	if !missingScoreTokens[strings.ToLower(rawScore)] {
		score, err := strconv.ParseFloat(rawScore, 64)
		if err != nil {
			return nil, &ValidationError{
				Field:   ColumnMetacriticScore,
				Value:   r.MetacriticScore,
				Line:    r.Line,
				Message: "invalid metacritic score, expected a number",
			}
		}
		if !math.IsNaN(score) {
			if score < 0 || score > 100 {
				return nil, &ValidationError{
					Field:   ColumnMetacriticScore,
					Value:   r.MetacriticScore,
					Line:    r.Line,
					Message: "metacritic score out of range, expected 0-100",
				}
			}
			rec.MetacriticScore = &score
		}
	}

	oscars, err := parseWholeNumber(r.OscarsWon)
	if err != nil || oscars < 0 {
		return nil, &ValidationError{
			Field:   ColumnOscarsWon,
			Value:   r.OscarsWon,
			Line:    r.Line,
			Message: "invalid oscars won, expected a non-negative integer",
		}
	}
	rec.OscarsWon = oscars

	return rec, nil
}

// parseWholeNumber accepts "12" as well as "12.0", which spreadsheet exports
// produce for integer columns that once held a blank cell.
func parseWholeNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, strconv.ErrSyntax
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, strconv.ErrRange
	}
	return int(f), nil
}

// ValidationError represents a row that failed normalization
type ValidationError struct {
	Field   string
	Value   string
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return "line " + strconv.Itoa(e.Line) + ": " + e.Field + ": " + e.Message
	}
	return e.Field + ": " + e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
