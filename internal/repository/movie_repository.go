package repository

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"movie-explorer/internal/models"
	"movie-explorer/pkg/database"
	"movie-explorer/pkg/logging"
)

// MovieSource yields the raw rows of the catalog. Sources only read; the
// catalog is never written back.
type MovieSource interface {
	Load(ctx context.Context) ([]models.RawMovieRecord, error)
	Describe() string
}

// SourceError wraps a failure to read a source
type SourceError struct {
	Source    string
	Err       error
	transient bool
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether retrying the read could succeed
func (e *SourceError) IsTransient() bool {
	return e.transient
}

// CSVSource reads the catalog from a CSV file with a header row
type CSVSource struct {
	path   string
	logger *logging.ContextLogger
}

// NewCSVSource creates a CSV source for the file at path
func NewCSVSource(path string, logger *logging.StructuredLogger) *CSVSource {
	return &CSVSource{path: path, logger: logger.WithFields(logging.Fields{"component": "csv_source"})}
}

// Describe names the source in logs and reports
func (s *CSVSource) Describe() string {
	return "csv:" + s.path
}

// Load opens the file and parses every row
func (s *CSVSource) Load(ctx context.Context) ([]models.RawMovieRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, &SourceError{Source: s.Describe(), Err: err}
	}
	defer file.Close()

	rows, err := ReadCSV(file)
	if err != nil {
		return nil, &SourceError{Source: s.Describe(), Err: err}
	}

	s.logger.Debug(ctx, "[REPO_CSV_LOAD] CSV rows read", logging.Fields{
		"path": s.path,
		"rows": len(rows),
	})

	return rows, nil
}

// ReadCSV parses a catalog CSV. Columns are located by header name, extra
// columns are ignored, and short rows yield empty fields so that
// normalization reports them row by row instead of failing the whole file.
func ReadCSV(r io.Reader) ([]models.RawMovieRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	required := []string{models.ColumnTitle, models.ColumnYear, models.ColumnMetacriticScore, models.ColumnOscarsWon}
	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	field := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var rows []models.RawMovieRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, models.RawMovieRecord{
			Line:            line,
			Title:           field(row, models.ColumnTitle),
			Year:            field(row, models.ColumnYear),
			MetacriticScore: field(row, models.ColumnMetacriticScore),
			OscarsWon:       field(row, models.ColumnOscarsWon),
		})
	}

	return rows, nil
}

// SQLSource reads the catalog from a table with the columns
// title, year, metacritic_score and oscars_won.
type SQLSource struct {
	db     *database.DB
	table  string
	logger *logging.ContextLogger
}

// movieRow mirrors the table; every column is scanned as text so all drivers
// feed the same normalization path.
type movieRow struct {
	Title           sql.NullString `db:"title"`
	Year            sql.NullString `db:"year"`
	MetacriticScore sql.NullString `db:"metacritic_score"`
	OscarsWon       sql.NullString `db:"oscars_won"`
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}(\.[A-Za-z_][A-Za-z0-9_]{0,62})?$`)

// ValidateTableName rejects anything but a plain or schema-qualified identifier
func ValidateTableName(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

// NewSQLSource creates a source reading table through db
func NewSQLSource(db *database.DB, table string, logger *logging.StructuredLogger) (*SQLSource, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}
	return &SQLSource{db: db, table: table, logger: logger.WithFields(logging.Fields{"component": "sql_source"})}, nil
}

// Describe names the source in logs and reports
func (s *SQLSource) Describe() string {
	return s.db.Driver() + ":" + s.table
}

// Load selects every row. Rows come back ordered by year then title, which
// fixes the tie order the dataset keeps for same-year releases.
func (s *SQLSource) Load(ctx context.Context) ([]models.RawMovieRecord, error) {
	query := fmt.Sprintf(`
		SELECT title, year, metacritic_score, oscars_won
		FROM %s
		ORDER BY year, title
	`, s.table)

	var dbRows []movieRow
	if err := s.db.SelectContext(ctx, "select_movies", &dbRows, query); err != nil {
		return nil, &SourceError{Source: s.Describe(), Err: err, transient: isTransient(err)}
	}

	rows := make([]models.RawMovieRecord, 0, len(dbRows))
	for i, r := range dbRows {
		rows = append(rows, models.RawMovieRecord{
			Line:            i + 1,
			Title:           r.Title.String,
			Year:            r.Year.String,
			MetacriticScore: r.MetacriticScore.String,
			OscarsWon:       r.OscarsWon.String,
		})
	}

	s.logger.Debug(ctx, "[REPO_SQL_LOAD] Table rows read", logging.Fields{
		"table": s.table,
		"rows":  len(rows),
	})

	return rows, nil
}

func isTransient(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone)
}
