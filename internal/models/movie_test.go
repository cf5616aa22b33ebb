package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRawMovieRecord_ToRecord tests the normalization of raw rows
func TestRawMovieRecord_ToRecord(t *testing.T) {
	tests := []struct {
		name        string
		record      RawMovieRecord
		wantErr     bool
		wantField   string
		checkValues func(*testing.T, *MovieRecord)
	}{
		{
			name:   "valid record with all values",
			record: RawMovieRecord{Title: " The Godfather ", Year: "1972", MetacriticScore: "100", OscarsWon: "3"},
			checkValues: func(t *testing.T, rec *MovieRecord) {
				assert.Equal(t, "The Godfather", rec.Title)
				assert.Equal(t, 1972, rec.ReleaseYear)
				assert.Equal(t, time.Date(1972, 1, 1, 0, 0, 0, 0, time.UTC), rec.ReleaseDate)
				require.NotNil(t, rec.MetacriticScore)
				assert.Equal(t, 100.0, *rec.MetacriticScore)
				assert.Equal(t, 3, rec.OscarsWon)
			},
		},
		{
			name:   "empty score is absent, not zero",
			record: RawMovieRecord{Title: "Unrated", Year: "1950", MetacriticScore: "", OscarsWon: "0"},
			checkValues: func(t *testing.T, rec *MovieRecord) {
				assert.Nil(t, rec.MetacriticScore)
				assert.False(t, rec.HasScore())
			},
		},
		{
			name:   "NaN score is absent",
			record: RawMovieRecord{Title: "Unrated", Year: "1950", MetacriticScore: "NaN", OscarsWon: "0"},
			checkValues: func(t *testing.T, rec *MovieRecord) {
				assert.Nil(t, rec.MetacriticScore)
			},
		},
		{
			name:   "N/A score is absent",
			record: RawMovieRecord{Title: "Unrated", Year: "1950", MetacriticScore: "N/A", OscarsWon: "1"},
			checkValues: func(t *testing.T, rec *MovieRecord) {
				assert.Nil(t, rec.MetacriticScore)
			},
		},
		{
			name:   "float-formatted integers are accepted",
			record: RawMovieRecord{Title: "Export", Year: "1994.0", MetacriticScore: "82.5", OscarsWon: "7.0"},
			checkValues: func(t *testing.T, rec *MovieRecord) {
				assert.Equal(t, 1994, rec.ReleaseYear)
				assert.Equal(t, 7, rec.OscarsWon)
				require.NotNil(t, rec.MetacriticScore)
				assert.Equal(t, 82.5, *rec.MetacriticScore)
			},
		},
		{
			name:      "empty title",
			record:    RawMovieRecord{Title: "  ", Year: "1972", MetacriticScore: "100", OscarsWon: "3"},
			wantErr:   true,
			wantField: ColumnTitle,
		},
		{
			name:      "year is not a number",
			record:    RawMovieRecord{Title: "X", Year: "nineteen", MetacriticScore: "50", OscarsWon: "0"},
			wantErr:   true,
			wantField: ColumnYear,
		},
		{
			name:      "year is not 4 digits",
			record:    RawMovieRecord{Title: "X", Year: "72", MetacriticScore: "50", OscarsWon: "0"},
			wantErr:   true,
			wantField: ColumnYear,
		},
		{
			name:      "score out of range",
			record:    RawMovieRecord{Title: "X", Year: "1972", MetacriticScore: "101", OscarsWon: "0"},
			wantErr:   true,
			wantField: ColumnMetacriticScore,
		},
		{
			name:      "score is garbage",
			record:    RawMovieRecord{Title: "X", Year: "1972", MetacriticScore: "great", OscarsWon: "0"},
			wantErr:   true,
			wantField: ColumnMetacriticScore,
		},
		{
			name:      "negative oscars",
			record:    RawMovieRecord{Title: "X", Year: "1972", MetacriticScore: "50", OscarsWon: "-1"},
			wantErr:   true,
			wantField: ColumnOscarsWon,
		},
		{
			name:      "fractional oscars",
			record:    RawMovieRecord{Title: "X", Year: "1972", MetacriticScore: "50", OscarsWon: "1.5"},
			wantErr:   true,
			wantField: ColumnOscarsWon,
		},
		{
			name:      "oscars too large to be a count",
			record:    RawMovieRecord{Title: "X", Year: "1972", MetacriticScore: "50", OscarsWon: "1e300"},
			wantErr:   true,
			wantField: ColumnOscarsWon,
		},
		{
			name:      "missing oscars",
			record:    RawMovieRecord{Title: "X", Year: "1972", MetacriticScore: "50", OscarsWon: ""},
			wantErr:   true,
			wantField: ColumnOscarsWon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tt.record.ToRecord()

			if tt.wantErr {
				require.Error(t, err)
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, tt.wantField, vErr.Field)
				return
			}

			require.NoError(t, err)
			tt.checkValues(t, rec)
		})
	}
}

func TestParseWholeNumber(t *testing.T) {
	n, err := parseWholeNumber(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = parseWholeNumber("11.0")
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	for _, bad := range []string{"", "1e400", "1e300", "-1e300", "4294967296.0", "NaN", "2.5", "x"} {
		_, err := parseWholeNumber(bad)
		assert.Error(t, err, bad)
	}
}

// TestValidationError tests error handling
func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   ColumnYear,
		Value:   "abc",
		Line:    4,
		Message: "invalid year",
	}

	assert.Equal(t, "line 4: Year: invalid year", err.Error())
	assert.False(t, err.IsTransient())

	err.Line = 0
	assert.Equal(t, "Year: invalid year", err.Error())
}

func TestErrorsAreNotTransient(t *testing.T) {
	cfgErr := &ConfigurationError{Source: "movies.csv", Message: "dataset is empty"}
	assert.Equal(t, "configuration error (movies.csv): dataset is empty", cfgErr.Error())
	assert.False(t, cfgErr.IsTransient())

	critErr := &InvalidCriteriaError{Problems: []string{"a", "b"}}
	assert.Equal(t, "invalid criteria: a; b", critErr.Error())
	assert.False(t, critErr.IsTransient())
}

func TestAwardHistogram_Total(t *testing.T) {
	assert.Equal(t, 0, AwardHistogram(nil).Total())
	assert.Equal(t, 5, AwardHistogram{{OscarsWon: 0, Count: 2}, {OscarsWon: 4, Count: 3}}.Total())
}
