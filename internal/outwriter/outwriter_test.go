package outwriter

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-explorer/internal/models"
	"movie-explorer/internal/services"
)

func sampleViews() (models.FilterCriteria, models.Views) {
	c := models.FilterCriteria{
		MinMetacriticScore: 75,
		MinOscarsWon:       1,
		DateStart:          models.ReleaseDateOf(2000),
		DateEnd:            models.ReleaseDateOf(2010),
	}
	views := models.Views{
		ScoreSeries: []models.ScorePoint{
			{ReleaseDate: models.ReleaseDateOf(2000), MetacriticScore: 80, Title: "Alpha"},
			{ReleaseDate: models.ReleaseDateOf(2010), MetacriticScore: 90.5, Title: "Gamma"},
		},
		OscarSeries: models.OscarSeries{OscarsWon: []int{1, 3}, Count: []int{1, 2}},
	}
	return c, views
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: TableOut},
		{in: "table", want: TableOut},
		{in: "JSON", want: JSONOut},
		{in: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteViews_Table(t *testing.T) {
	var buf bytes.Buffer
	c, views := sampleViews()

	require.NoError(t, New(&buf, TableOut, false).WriteViews(c, views))

	out := buf.String()
	assert.Contains(t, out, "min score 75, min oscars 1, 2000-01-01 .. 2010-01-01")
	assert.Contains(t, out, models.ScoreFigure.Title)
	assert.Contains(t, out, models.OscarFigure.Title)
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "90.5")
	assert.Contains(t, out, "2010-01-01")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Alpha")), bytes.Index(buf.Bytes(), []byte("Gamma")))
}

func TestWriteViews_JSON(t *testing.T) {
	var buf bytes.Buffer
	c, views := sampleViews()

	require.NoError(t, New(&buf, JSONOut, false).WriteViews(c, views))

	var got struct {
		Criteria    models.FilterCriteria `json:"criteria"`
		ScoreSeries []models.ScorePoint   `json:"score_series"`
		OscarSeries models.OscarSeries    `json:"oscar_series"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, c.MinOscarsWon, got.Criteria.MinOscarsWon)
	assert.Equal(t, views.OscarSeries, got.OscarSeries)
	require.Len(t, got.ScoreSeries, 2)
	assert.Equal(t, "Gamma", got.ScoreSeries[1].Title)
}

func TestWriteOptions_Table(t *testing.T) {
	var buf bytes.Buffer
	opts := models.Options{
		ScoreOptions: []float64{70, 80.5, 90},
		OscarOptions: []int{0, 1, 3},
		DateMin:      models.ReleaseDateOf(2000),
		DateMax:      models.ReleaseDateOf(2010),
	}
	defaults := models.FilterCriteria{
		MinMetacriticScore: 70,
		DateStart:          opts.DateMin,
		DateEnd:            opts.DateMax,
	}

	require.NoError(t, New(&buf, TableOut, false).WriteOptions(opts, defaults))

	out := buf.String()
	assert.Contains(t, out, "70, 80.5, 90")
	assert.Contains(t, out, "0, 1, 3")
	assert.Contains(t, out, "2000-01-01 .. 2010-01-01")
}

func TestWriteReport(t *testing.T) {
	report := &services.NormalizationResult{
		Source:       "csv:movies.csv",
		TotalRows:    3,
		AcceptedRows: 2,
		RejectedRows: 1,
		MissingScore: 1,
		Duration:     2 * time.Millisecond,
		Errors:       []string{"line 4: Year: invalid year, expected a 4-digit integer"},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, TableOut, false).WriteReport(report))
		out := buf.String()
		assert.Contains(t, out, "csv:movies.csv")
		assert.Contains(t, out, "rejected line 4: Year")
		assert.Contains(t, out, "2ms")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, JSONOut, false).WriteReport(report))
		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, 1.0, got["RejectedRows"])
		assert.NotContains(t, got, "Records")
	})
}
