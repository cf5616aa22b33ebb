package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-explorer/internal/models"
)

func score(v float64) *float64 {
	return &v
}

func movie(title string, year int, s *float64, oscars int) models.MovieRecord {
	return models.MovieRecord{
		Title:           title,
		ReleaseYear:     year,
		ReleaseDate:     models.ReleaseDateOf(year),
		MetacriticScore: s,
		OscarsWon:       oscars,
	}
}

// sampleDataset is the four-movie catalog used across the engine tests.
func sampleDataset() *Dataset {
	return NewDataset([]models.MovieRecord{
		movie("A", 2000, score(80), 1),
		movie("B", 2005, nil, 0),
		movie("C", 2010, score(90), 3),
		movie("D", 2010, score(70), 3),
	})
}

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func criteria(minScore float64, minOscars int, start, end string) models.FilterCriteria {
	return models.FilterCriteria{
		MinMetacriticScore: minScore,
		MinOscarsWon:       minOscars,
		DateStart:          date(start),
		DateEnd:            date(end),
	}
}

func titles(view models.FilteredView) []string {
	out := make([]string, 0, len(view))
	for _, r := range view {
		out = append(out, r.Title)
	}
	return out
}

func TestCompute_Scenarios(t *testing.T) {
	ds := sampleDataset()

	tests := []struct {
		name       string
		criteria   models.FilterCriteria
		wantScores []string
		wantOscars []int
		wantCounts []int
	}{
		{
			name:       "score threshold drops unscored and low scores",
			criteria:   criteria(75, 0, "2000-01-01", "2020-01-01"),
			wantScores: []string{"A", "C"},
			wantOscars: []int{0, 1, 3},
			wantCounts: []int{1, 1, 2},
		},
		{
			name:       "oscar threshold groups ties",
			criteria:   criteria(0, 2, "2000-01-01", "2020-01-01"),
			wantScores: []string{"A", "C", "D"},
			wantOscars: []int{3},
			wantCounts: []int{2},
		},
		{
			name:       "date range with no releases",
			criteria:   criteria(0, 0, "2001-01-01", "2004-01-01"),
			wantScores: []string{},
			wantOscars: []int{},
			wantCounts: []int{},
		},
		{
			name:       "widened date range picks up unscored movie",
			criteria:   criteria(0, 0, "2001-01-01", "2006-01-01"),
			wantScores: []string{},
			wantOscars: []int{0},
			wantCounts: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := Compute(ds, tt.criteria)

			gotScores := make([]string, 0, len(views.ScoreSeries))
			for _, p := range views.ScoreSeries {
				gotScores = append(gotScores, p.Title)
			}
			assert.Equal(t, tt.wantScores, gotScores)
			assert.Equal(t, tt.wantOscars, views.OscarSeries.OscarsWon)
			assert.Equal(t, tt.wantCounts, views.OscarSeries.Count)
		})
	}
}

func TestFilter_DateRangeInclusive(t *testing.T) {
	ds := sampleDataset()

	view := ds.Filter(criteria(0, 0, "2005-01-01", "2010-01-01"), models.AxisOscars)
	assert.Equal(t, []string{"B", "C", "D"}, titles(view))

	view = ds.Filter(criteria(0, 0, "2005-01-02", "2009-12-31"), models.AxisOscars)
	assert.Empty(t, view)
}

func TestFilter_UnscoredNeverInScoreView(t *testing.T) {
	ds := sampleDataset()

	for _, minScore := range []float64{math.Inf(-1), -1000, 0, 50} {
		view := ds.Filter(criteria(minScore, 0, "1900-01-01", "2100-01-01"), models.AxisScore)
		for _, r := range view {
			assert.True(t, r.HasScore(), "min score %v let %q through", minScore, r.Title)
		}
		views := Assemble(view, nil)
		assert.Len(t, views.ScoreSeries, len(view))
	}
}

func TestFilter_StableOrder(t *testing.T) {
	ds := NewDataset([]models.MovieRecord{
		movie("late", 2012, score(60), 0),
		movie("tie-1", 1999, score(61), 0),
		movie("early", 1990, score(62), 0),
		movie("tie-2", 1999, score(63), 0),
	})

	view := ds.Filter(criteria(0, 0, "1900-01-01", "2100-01-01"), models.AxisScore)
	assert.Equal(t, []string{"early", "tie-1", "tie-2", "late"}, titles(view))
}

func TestFilter_Properties(t *testing.T) {
	ds := sampleDataset()
	records := ds.Records()
	base := criteria(75, 1, "2000-01-01", "2008-01-01")

	widened := []models.FilterCriteria{
		criteria(60, 1, "2000-01-01", "2008-01-01"),
		criteria(75, 0, "2000-01-01", "2008-01-01"),
		criteria(75, 1, "1990-01-01", "2008-01-01"),
		criteria(75, 1, "2000-01-01", "2020-01-01"),
	}

	for _, axis := range []models.Axis{models.AxisScore, models.AxisOscars} {
		view := Filter(records, base, axis)
		assert.LessOrEqual(t, len(view), len(records))

		// date predicate is idempotent
		dateOnly := Filter(records, base, "")
		assert.Equal(t, dateOnly, Filter(dateOnly, base, ""))

		for _, w := range widened {
			assert.GreaterOrEqual(t, len(Filter(records, w, axis)), len(view),
				"widening %+v shrank the %s view", w, axis)
		}
	}
}

func TestFilter_InvertedRangeIsEmpty(t *testing.T) {
	ds := sampleDataset()
	view := ds.Filter(criteria(0, 0, "2020-01-01", "2000-01-01"), models.AxisOscars)
	assert.NotNil(t, view)
	assert.Empty(t, view)
}

func TestAggregate(t *testing.T) {
	ds := sampleDataset()

	t.Run("preserves total and ascending unique keys", func(t *testing.T) {
		view := ds.Filter(criteria(0, 0, "1900-01-01", "2100-01-01"), models.AxisOscars)
		histogram := Aggregate(view)

		assert.Equal(t, len(view), histogram.Total())
		for i := 1; i < len(histogram); i++ {
			assert.Less(t, histogram[i-1].OscarsWon, histogram[i].OscarsWon)
		}
		assert.Equal(t, models.AwardHistogram{
			{OscarsWon: 0, Count: 1},
			{OscarsWon: 1, Count: 1},
			{OscarsWon: 3, Count: 2},
		}, histogram)
	})

	t.Run("empty view gives empty histogram", func(t *testing.T) {
		histogram := Aggregate(models.FilteredView{})
		assert.NotNil(t, histogram)
		assert.Empty(t, histogram)
	})
}

func TestAssemble_PreservesOrderAndShape(t *testing.T) {
	view := models.FilteredView{
		movie("first", 1980, score(55), 0),
		movie("second", 1970, score(99), 2),
	}
	histogram := models.AwardHistogram{{OscarsWon: 0, Count: 4}, {OscarsWon: 2, Count: 1}}

	views := Assemble(view, histogram)

	require.Len(t, views.ScoreSeries, 2)
	assert.Equal(t, "first", views.ScoreSeries[0].Title)
	assert.Equal(t, 55.0, views.ScoreSeries[0].MetacriticScore)
	assert.Equal(t, models.ReleaseDateOf(1980), views.ScoreSeries[0].ReleaseDate)
	assert.Equal(t, "second", views.ScoreSeries[1].Title)
	assert.Equal(t, []int{0, 2}, views.OscarSeries.OscarsWon)
	assert.Equal(t, []int{4, 1}, views.OscarSeries.Count)
}

func TestDataset_IsIsolatedFromCaller(t *testing.T) {
	records := []models.MovieRecord{movie("A", 2000, score(80), 1)}
	ds := NewDataset(records)

	*records[0].MetacriticScore = 10
	records[0].Title = "changed"

	got := ds.Records()
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, 80.0, *got[0].MetacriticScore)
}

func TestDataset_Page(t *testing.T) {
	ds := sampleDataset()

	assert.Equal(t, []string{"B", "C"}, titles(ds.Page(1, 2)))
	assert.Equal(t, []string{"D"}, titles(ds.Page(3, 10)))
	assert.Empty(t, ds.Page(4, 10))
	assert.Empty(t, ds.Page(-1, 10))
	assert.Empty(t, ds.Page(0, 0))
}
