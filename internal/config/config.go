//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-dwload.
// Configuration is loaded from defaults, an optional YAML file, the
// environment and CLI flags, in increasing order of precedence.
// The resulting Config is built once by the CLI and handed to every
// component; nothing else reads process state.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported dialects.
const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// DefaultCalendarBatchSize is the number of dim_date rows per INSERT.
const DefaultCalendarBatchSize = 500

// MaxCalendarBatchSize keeps a calendar INSERT (11 bound values per row)
// under the 65535 parameter limit of the PostgreSQL wire protocol.
const MaxCalendarBatchSize = 5000

// DefaultEnvFile is read, when present, before the environment.
const DefaultEnvFile = ".env"

// ErrMissing is returned (wrapped) when a required value is absent.
var ErrMissing = errors.New("missing required configuration")

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Config holds all configuration for pgedge-dwload.
type Config struct {
	// Dialect selects the SQL engine: postgres or mysql.
	Dialect string `mapstructure:"dialect"`

	// Database holds the connection parameters.
	Database DatabaseConfig `mapstructure:"database"`

	// Schemas names the source and warehouse schemas (databases on MySQL).
	Schemas SchemaConfig `mapstructure:"schemas"`

	// DDLPath is an optional file of warehouse DDL run before loading.
	DDLPath string `mapstructure:"ddl_path"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is either "console" or "json".
	LogFormat string `mapstructure:"log_format"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// DatabaseConfig holds connection parameters.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// Name is the database to connect to. Required for postgres; on
	// mysql the schema qualifiers select the databases instead.
	Name string `mapstructure:"name"`

	// SSLMode is passed through to PostgreSQL connections.
	SSLMode string `mapstructure:"sslmode"`
}

// SchemaConfig holds the two schema qualifiers used in generated SQL.
type SchemaConfig struct {
	Source    string `mapstructure:"source"`
	Warehouse string `mapstructure:"warehouse"`
}

// LoadConfig holds configuration for the load pipeline.
type LoadConfig struct {
	// CalendarBatchSize is the number of dim_date rows per INSERT.
	CalendarBatchSize int `mapstructure:"calendar_batch_size"`

	// Verify runs the reconciliation checks after a successful load.
	Verify bool `mapstructure:"verify"`

	// RunLog records runs and stage completions in the warehouse.
	RunLog bool `mapstructure:"run_log"`
}

// SeedConfig holds configuration for synthetic source data.
type SeedConfig struct {
	// Loans is the number of loans to generate.
	Loans int `mapstructure:"loans"`

	// Seed makes generation reproducible when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

// envBindings maps configuration keys to the environment variables the
// loader has always honoured.
var envBindings = map[string]string{
	"dialect":           "DB_DIALECT",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.name":     "DB_NAME",
	"database.sslmode":  "DB_SSLMODE",
	"schemas.source":    "SRC_DB",
	"schemas.warehouse": "DW_DB",
	"ddl_path":          "DDL_PATH",
	"log_level":         "LOG_LEVEL",
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dialect:   DialectPostgres,
		LogLevel:  "info",
		LogFormat: "console",
		Database: DatabaseConfig{
			SSLMode: "prefer",
		},
		Load: LoadConfig{
			CalendarBatchSize: DefaultCalendarBatchSize,
			RunLog:            true,
		},
		Seed: SeedConfig{
			Loans: 1000,
		},
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-dwload.yaml
// 3. ~/.config/pgedge-dwload/config.yaml
//
// Variables in envFile (default ./.env) are added to the environment
// first; variables already set are left alone.
func Load(configFile, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("pgedge-dwload")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-dwload"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// loadEnvFile reads KEY=value lines into the process environment. A
// missing default file is not an error; a missing explicit one is.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading env file %s: %w", path, err)
	}
	return nil
}

// ApplyDefaults fills values whose default depends on other settings.
func (c *Config) ApplyDefaults() {
	c.Dialect = strings.ToLower(c.Dialect)
	if c.Database.Port == 0 {
		c.Database.Port = DefaultPort(c.Dialect)
	}
	if c.Load.CalendarBatchSize <= 0 {
		c.Load.CalendarBatchSize = DefaultCalendarBatchSize
	}
}

// DefaultPort returns the standard server port for dialect.
func DefaultPort(dialect string) int {
	if strings.EqualFold(dialect, DialectMySQL) {
		return 3306
	}
	return 5432
}

// Validate checks that connectivity and schema configuration is present.
func (c *Config) Validate() error {
	if err := c.validateConnection(); err != nil {
		return err
	}
	if err := validateIdentifier("source schema (SRC_DB)", c.Schemas.Source); err != nil {
		return err
	}
	if err := validateIdentifier("warehouse schema (DW_DB)", c.Schemas.Warehouse); err != nil {
		return err
	}
	if c.Schemas.Source == c.Schemas.Warehouse {
		return fmt.Errorf("source and warehouse schemas must differ")
	}
	return nil
}

func (c *Config) validateConnection() error {
	if c.Dialect != DialectPostgres && c.Dialect != DialectMySQL {
		return fmt.Errorf("dialect must be '%s' or '%s', got '%s'",
			DialectPostgres, DialectMySQL, c.Dialect)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("%w: database host (DB_HOST)", ErrMissing)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("database port must be between 1 and 65535, got %d", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("%w: database user (DB_USER)", ErrMissing)
	}
	if c.Dialect == DialectPostgres && c.Database.Name == "" {
		return fmt.Errorf("%w: database name (DB_NAME)", ErrMissing)
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Load.CalendarBatchSize < 1 || c.Load.CalendarBatchSize > MaxCalendarBatchSize {
		return fmt.Errorf("calendar_batch_size must be between 1 and %d, got %d",
			MaxCalendarBatchSize, c.Load.CalendarBatchSize)
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command. Only
// the source schema is needed.
func (c *Config) ValidateSeed() error {
	if err := c.validateConnection(); err != nil {
		return err
	}
	if err := validateIdentifier("source schema (SRC_DB)", c.Schemas.Source); err != nil {
		return err
	}
	if c.Seed.Loans < 1 {
		return fmt.Errorf("loans must be at least 1")
	}
	return nil
}

func validateIdentifier(what, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s", ErrMissing, what)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("%s %q is not a valid identifier", what, name)
	}
	return nil
}
