// Package config loads runtime settings from a YAML file, MOVIE_EXPLORER_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"movie-explorer/internal/repository"
	"movie-explorer/pkg/database"
	"movie-explorer/pkg/logging"
)

// Dataset sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = database.DriverPostgres
	SourceMySQL    = database.DriverMySQL
	SourceSQLite   = database.DriverSQLite
)

// EnvPrefix prefixes every environment override, e.g. MOVIE_EXPLORER_SERVER_PORT.
const EnvPrefix = "MOVIE_EXPLORER"

// Config is the complete runtime configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Database DatabaseConfig `mapstructure:"database"`
	Filters  FiltersConfig  `mapstructure:"filters"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DatasetConfig selects where the catalog is read from
type DatasetConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	Table  string `mapstructure:"table"`
}

// DatabaseConfig configures SQL dataset sources
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// FiltersConfig controls criteria validation
type FiltersConfig struct {
	// StrictBounds rejects criteria outside the derived options instead of
	// answering with a possibly empty view.
	StrictBounds bool `mapstructure:"strict_bounds"`
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

var defaults = map[string]interface{}{
	"server.host":                 "0.0.0.0",
	"server.port":                 8080,
	"server.read_timeout":         "15s",
	"server.write_timeout":        "15s",
	"server.idle_timeout":         "60s",
	"server.shutdown_timeout":     "30s",
	"server.allowed_origins":      []string{"*"},
	"dataset.source":              SourceCSV,
	"dataset.path":                "top_100_movies_full_best_effort.csv",
	"dataset.table":               "movies",
	"database.dsn":                "",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.database":           "movies",
	"database.sslmode":            "disable",
	"database.max_open_conns":     5,
	"database.max_idle_conns":     2,
	"database.conn_max_lifetime":  "30m",
	"database.conn_max_idle_time": "5m",
	"filters.strict_bounds":       false,
	"logging.level":               "info",
}

// Loader resolves configuration from defaults, file, environment and flags
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment overrides in place
func NewLoader() *Loader {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlag lets a command-line flag override key when the flag is set
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind to %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// DatasetFlags maps config keys to the command-line flags overriding them.
// Both the server and the CLI register them with AddDatasetFlags.
var DatasetFlags = map[string]string{
	"dataset.source":        "source",
	"dataset.path":          "dataset",
	"dataset.table":         "table",
	"database.dsn":          "dsn",
	"filters.strict_bounds": "strict",
}

// AddDatasetFlags registers the flags named in DatasetFlags on fs
func AddDatasetFlags(fs *pflag.FlagSet) {
	fs.String("source", SourceCSV, "dataset source: csv, postgres, mysql or sqlite")
	fs.String("dataset", "", "CSV file, or sqlite database file")
	fs.String("table", "", "table holding the catalog for SQL sources")
	fs.String("dsn", "", "database connection string for SQL sources")
	fs.Bool("strict", false, "reject criteria outside the derived options")
}

// BindFlags binds every key of bindings to the flag of fs it names
func (l *Loader) BindFlags(fs *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		if err := l.BindFlag(key, fs.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// Load reads configFile, or movie-explorer.yaml from the working directory or
// ~/.config/movie-explorer when configFile is empty. A missing default file
// is not an error.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName("movie-explorer")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "movie-explorer"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	cfg.Dataset.Source = strings.ToLower(strings.TrimSpace(cfg.Dataset.Source))

	return cfg, nil
}

// ConfigFileUsed returns the file Load read, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Validate checks the loaded configuration for values that cannot work
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port must be between 1 and 65535 (received %d)", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		problems = append(problems, "server timeouts must be positive")
	}

	switch c.Dataset.Source {
	case SourceCSV:
		if strings.TrimSpace(c.Dataset.Path) == "" {
			problems = append(problems, "dataset.path is required for the csv source")
		}
	case SourcePostgres, SourceMySQL, SourceSQLite:
		if err := repository.ValidateTableName(c.Dataset.Table); err != nil {
			problems = append(problems, "dataset.table: "+err.Error())
		}
		if c.Dataset.Source == SourceSQLite && c.Database.DSN == "" && c.Dataset.Path == "" {
			problems = append(problems, "sqlite source needs database.dsn or dataset.path")
		}
	default:
		problems = append(problems, fmt.Sprintf("dataset.source %q must be csv, postgres, mysql or sqlite", c.Dataset.Source))
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, "logging.level: "+err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DatabaseConfig translates the SQL settings for pkg/database.
// For sqlite the dataset path doubles as the database file.
func (c *Config) DatabaseConfig() *database.Config {
	dbCfg := &database.Config{
		Driver:          c.Dataset.Source,
		DSN:             c.Database.DSN,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
	if c.Dataset.Source == SourceSQLite && dbCfg.DSN == "" {
		dbCfg.Database = c.Dataset.Path
	}
	return dbCfg
}

// LogLevel returns the parsed logging level, defaulting to info
func (c *Config) LogLevel() logging.LogLevel {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return level
}

// Address returns host:port for the HTTP listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
