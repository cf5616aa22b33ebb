package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-explorer/internal/export"
	"movie-explorer/internal/models"
)

var testDataset = filepath.Join("..", "..", "testdata", "movies.csv")

// run executes the explorer with args against the test dataset.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append([]string{"--source", "csv", "--dataset", testDataset, "--no-color"}, args...))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))

	err := root.Execute()
	return out.String(), err
}

func TestOptionsCmd_JSON(t *testing.T) {
	out, err := run(t, "", "options", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Options  models.Options        `json:"options"`
		Defaults models.FilterCriteria `json:"defaults"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 6, 7, 8, 11}, got.Options.OscarOptions)
	assert.Equal(t, models.ReleaseDateOf(1927), got.Options.DateMin)
	assert.Equal(t, models.ReleaseDateOf(2019), got.Options.DateMax)
	assert.Equal(t, 75.0, got.Defaults.MinMetacriticScore)
	assert.Equal(t, 0, got.Defaults.MinOscarsWon)
}

func TestOptionsCmd_Table(t *testing.T) {
	out, err := run(t, "", "options")
	require.NoError(t, err)
	assert.Contains(t, out, "Filter Options")
	assert.Contains(t, out, "1927-01-01 .. 2019-01-01")
}

func TestViewsCmd(t *testing.T) {
	out, err := run(t, "", "views", "--min-score", "95", "--min-oscars", "7", "-o", "json")
	require.NoError(t, err)

	var got struct {
		ScoreSeries []models.ScorePoint `json:"score_series"`
		OscarSeries models.OscarSeries  `json:"oscar_series"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	require.Len(t, got.ScoreSeries, 11)
	assert.Equal(t, "Metropolis", got.ScoreSeries[0].Title)
	assert.Equal(t, "Parasite", got.ScoreSeries[10].Title)
	for _, p := range got.ScoreSeries {
		assert.GreaterOrEqual(t, p.MetacriticScore, 95.0)
	}
	assert.Equal(t, []int{7, 8, 11}, got.OscarSeries.OscarsWon)
	assert.Equal(t, []int{2, 1, 3}, got.OscarSeries.Count)
}

func TestViewsCmd_DateRange(t *testing.T) {
	out, err := run(t, "", "views", "--from", "1994-01-01", "--to", "1994-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Pulp Fiction")
	assert.Contains(t, out, "Forrest Gump")
	assert.NotContains(t, out, "Titanic")
}

func TestViewsCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "inverted range", args: []string{"views", "--from", "2000-01-01", "--to", "1990-01-01"}, wantErr: "invalid criteria"},
		{name: "bad date", args: []string{"views", "--from", "01/01/2000"}, wantErr: "invalid --from"},
		{name: "bad format", args: []string{"views", "-o", "yaml"}, wantErr: "unknown output format"},
		{name: "strict bounds", args: []string{"--strict", "views", "--min-oscars", "12"}, wantErr: "min oscars 12 outside [0, 11]"},
		{name: "unknown source", args: []string{"--source", "excel", "views"}, wantErr: "dataset.source"},
		{name: "nan score", args: []string{"views", "--min-score", "NaN"}, wantErr: "min score NaN is not a finite number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"Title,Year,Metacritic Score,Oscars Won",
		"Good,2001,80,1",
		"No Score,2002,N/A,0",
		"Bad Year,20x2,70,0",
	}, "\n")), 0o600))

	out, err := run(t, "", "--dataset", path, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Normalization Report: csv:"+path)
	assert.Contains(t, out, "rejected line 4: Year")
}

func TestCheckCmd_EmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte("Title,Year,Metacritic Score,Oscars Won\n,2001,80,1\n"), 0o600))

	out, err := run(t, "", "--dataset", path, "check", "-o", "json")
	var cfgErr *models.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1.0, report["RejectedRows"])
}

func TestExportCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "", "export", "--dir", dir, "--min-oscars", "7")
	require.NoError(t, err)

	for _, name := range []string{export.ScoreSeriesFile, export.OscarSeriesFile} {
		path := filepath.Join(dir, name)
		assert.Contains(t, out, "wrote "+path)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestSessionCmd(t *testing.T) {
	input := strings.Join([]string{
		"oscars 11",
		"dates 2010-01-01 2000-01-01",
		"bogus",
		"score abc",
		"dates 1997-01-01",
		"",
		"help",
		"show",
		"reset",
		"quit",
		"oscars 1",
	}, "\n")

	out, err := run(t, input, "session")
	require.NoError(t, err)

	assert.Contains(t, out, "min score 75, min oscars 0, 1927-01-01 .. 2019-01-01")
	assert.Contains(t, out, "min score 75, min oscars 11, 1927-01-01 .. 2019-01-01")
	assert.Contains(t, out, "rejected: invalid criteria: date start 2010-01-01 is after date end 2000-01-01 (keeping previous views)")
	assert.Contains(t, out, `error: unknown command "bogus", type help`)
	assert.Contains(t, out, `error: invalid score "abc"`)
	assert.Contains(t, out, "error: usage: dates YYYY-MM-DD YYYY-MM-DD")
	assert.Contains(t, out, "release date range")
	assert.NotContains(t, out, "min oscars 1,")
}

func TestSessionCmd_RejectsNaNScore(t *testing.T) {
	out, err := run(t, "score NaN\nshow\n", "session")
	require.NoError(t, err)
	assert.Contains(t, out, "rejected: invalid criteria: min score NaN is not a finite number (keeping previous views)")
	assert.NotContains(t, out, "min score NaN,")
}

func TestRootCmd_Verbose(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		wantLogs bool
	}{
		{name: "quiet by default", verbose: false, wantLogs: false},
		{name: "verbose", verbose: true, wantLogs: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"--source", "csv", "--dataset", testDataset, "--no-color"}
			if tt.verbose {
				args = append(args, "-v")
			}

			var out, errOut bytes.Buffer
			root := NewRootCmd()
			root.SetArgs(append(args, "options"))
			root.SetOut(&out)
			root.SetErr(&errOut)
			require.NoError(t, root.Execute())

			if tt.wantLogs {
				assert.Contains(t, errOut.String(), "[CATALOG_LOAD_COMPLETE]")
				assert.Contains(t, errOut.String(), `"component":"catalog"`)
			} else {
				assert.NotContains(t, errOut.String(), "[CATALOG_LOAD_COMPLETE]")
			}
		})
	}
}

func TestSessionCmd_EndOfInput(t *testing.T) {
	out, err := run(t, "score 90\n", "session")
	require.NoError(t, err)
	assert.Contains(t, out, "min score 90, min oscars 0")
}
