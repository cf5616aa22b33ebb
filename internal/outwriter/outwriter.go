// Package outwriter renders explorer results for the terminal, either as
// tables or as JSON.
package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"movie-explorer/internal/engine"
	"movie-explorer/internal/models"
	"movie-explorer/internal/services"
)

// Format selects how results are written.
type Format string

const (
	TableOut Format = "table"
	JSONOut  Format = "json"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case TableOut, "":
		return TableOut, nil
	case JSONOut:
		return JSONOut, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table or json)", s)
	}
}

// Writer writes results to an io.Writer in one Format.
type Writer struct {
	out       io.Writer
	format    Format
	useColors bool
}

// New creates a Writer. Colors only apply to table output.
func New(out io.Writer, format Format, useColors bool) *Writer {
	return &Writer{out: out, format: format, useColors: useColors}
}

func (w *Writer) sprint(attrs ...color.Attribute) func(...any) string {
	if !w.useColors {
		return fmt.Sprint
	}
	return color.New(attrs...).SprintFunc()
}

func (w *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error writing JSON output: %w", err)
	}
	return nil
}

func (w *Writer) writeTable(headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w.out)

	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("error writing table rows: %w", err)
	}
	return table.Render()
}

func (w *Writer) heading(title string) {
	bold := w.sprint(color.Bold)
	_, _ = fmt.Fprintf(w.out, "\n%s\n", bold(title))
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func joinScores(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatScore(v)
	}
	return strings.Join(parts, ", ")
}

// WriteOptions writes the derived filter options and the default criteria.
func (w *Writer) WriteOptions(opts models.Options, defaults models.FilterCriteria) error {
	if w.format == JSONOut {
		return w.writeJSON(struct {
			Options  models.Options        `json:"options"`
			Defaults models.FilterCriteria `json:"defaults"`
		}{opts, defaults})
	}

	w.heading("Filter Options")
	return w.writeTable(
		[]string{"Control", "Options", "Default"},
		[][]string{
			{"Min Metacritic Score", joinScores(opts.ScoreOptions), formatScore(defaults.MinMetacriticScore)},
			{"Min Oscars Won", joinInts(opts.OscarOptions), strconv.Itoa(defaults.MinOscarsWon)},
			{"Release Date", opts.DateMin.Format(engine.DateLayout) + " .. " + opts.DateMax.Format(engine.DateLayout),
				defaults.DateStart.Format(engine.DateLayout) + " .. " + defaults.DateEnd.Format(engine.DateLayout)},
		},
	)
}

// WriteViews writes both series of one recomputation.
func (w *Writer) WriteViews(c models.FilterCriteria, views models.Views) error {
	if w.format == JSONOut {
		return w.writeJSON(struct {
			Criteria    models.FilterCriteria `json:"criteria"`
			ScoreSeries []models.ScorePoint   `json:"score_series"`
			OscarSeries models.OscarSeries    `json:"oscar_series"`
		}{c, views.ScoreSeries, views.OscarSeries})
	}

	dim := w.sprint(color.FgHiBlack)
	_, _ = fmt.Fprintln(w.out, dim(fmt.Sprintf("min score %s, min oscars %d, %s .. %s",
		formatScore(c.MinMetacriticScore), c.MinOscarsWon,
		c.DateStart.Format(engine.DateLayout), c.DateEnd.Format(engine.DateLayout))))

	w.heading(models.ScoreFigure.Title)
	scoreRows := make([][]string, 0, len(views.ScoreSeries))
	for _, p := range views.ScoreSeries {
		scoreRows = append(scoreRows, []string{
			p.ReleaseDate.Format(engine.DateLayout),
			formatScore(p.MetacriticScore),
			p.Title,
		})
	}
	if err := w.writeTable([]string{models.ScoreFigure.XAxis, models.ScoreFigure.YAxis, "Title"}, scoreRows); err != nil {
		return err
	}

	w.heading(models.OscarFigure.Title)
	green := w.sprint(color.FgGreen)
	oscarRows := make([][]string, 0, len(views.OscarSeries.OscarsWon))
	for i, won := range views.OscarSeries.OscarsWon {
		oscarRows = append(oscarRows, []string{
			strconv.Itoa(won),
			green(strconv.Itoa(views.OscarSeries.Count[i])),
		})
	}
	return w.writeTable([]string{models.OscarFigure.XAxis, models.OscarFigure.YAxis}, oscarRows)
}

// WriteReport writes a normalization report. Rejected rows are listed one
// per line after the summary.
func (w *Writer) WriteReport(report *services.NormalizationResult) error {
	if w.format == JSONOut {
		return w.writeJSON(report)
	}

	red := w.sprint(color.FgRed)
	yellow := w.sprint(color.FgYellow)

	w.heading("Normalization Report: " + report.Source)
	rejected := strconv.Itoa(report.RejectedRows)
	if report.RejectedRows > 0 {
		rejected = red(rejected)
	}
	if err := w.writeTable(
		[]string{"Total", "Accepted", "Rejected", "Missing Score", "Duration"},
		[][]string{{
			strconv.Itoa(report.TotalRows),
			strconv.Itoa(report.AcceptedRows),
			rejected,
			yellow(strconv.Itoa(report.MissingScore)),
			report.Duration.String(),
		}},
	); err != nil {
		return err
	}

	for _, msg := range report.Errors {
		_, _ = fmt.Fprintln(w.out, red("rejected ")+msg)
	}
	return nil
}
