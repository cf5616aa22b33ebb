// Package export writes computed views to Parquet files using
// github.com/parquet-go/parquet-go.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"movie-explorer/internal/models"
)

// File names written by WriteViews.
const (
	ScoreSeriesFile = "score_series.parquet"
	OscarSeriesFile = "oscar_series.parquet"
)

// ScorePointRow is one row of score_series.parquet.
type ScorePointRow struct {
	// ReleaseDate is Jan 1 of the release year
	ReleaseDate     time.Time `parquet:"release_date,snappy"`
	MetacriticScore float64   `parquet:"metacritic_score,snappy"`
	Title           string    `parquet:"title,snappy"`
}

// OscarCountRow is one row of oscar_series.parquet.
type OscarCountRow struct {
	OscarsWon int32 `parquet:"oscars_won,snappy"`
	Count     int32 `parquet:"count,snappy"`
}

// ScoreRows converts the score series, keeping its order.
func ScoreRows(series []models.ScorePoint) []ScorePointRow {
	rows := make([]ScorePointRow, len(series))
	for i, p := range series {
		rows[i] = ScorePointRow{
			ReleaseDate:     p.ReleaseDate,
			MetacriticScore: p.MetacriticScore,
			Title:           p.Title,
		}
	}
	return rows
}

// OscarRows converts the parallel oscar columns into rows.
func OscarRows(series models.OscarSeries) []OscarCountRow {
	rows := make([]OscarCountRow, len(series.OscarsWon))
	for i := range series.OscarsWon {
		rows[i] = OscarCountRow{
			OscarsWon: int32(series.OscarsWon[i]),
			Count:     int32(series.Count[i]),
		}
	}
	return rows
}

// WriteViews writes both series into dir, creating it if needed, and returns
// the paths written.
func WriteViews(views models.Views, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	scorePath := filepath.Join(dir, ScoreSeriesFile)
	if err := writeParquet(ScoreRows(views.ScoreSeries), scorePath); err != nil {
		return nil, err
	}

	oscarPath := filepath.Join(dir, OscarSeriesFile)
	if err := writeParquet(OscarRows(views.OscarSeries), oscarPath); err != nil {
		return nil, err
	}

	return []string{scorePath, oscarPath}, nil
}

func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return nil
}
