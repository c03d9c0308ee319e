package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// StorageDriver identifies a record store backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-process, lost on exit
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

const (
	DefaultPort           = 4000
	DefaultSQLitePath     = "./todos.db"
	DefaultRequestTimeout = 5 * time.Second
)

// Config holds process settings.
//
//	PORT                   listen port (default 4000)
//	TASKS_STORAGE_DRIVER    memory|sqlite|postgres (default sqlite)
//	TASKS_SQLITE_PATH       sqlite file (default ./todos.db)
//	DATABASE_URL           postgres DSN when the driver is postgres
//	TASKS_LOG_LEVEL         debug|info|warn|error (default info)
//	TASKS_LOG_FORMAT        text|json (default text)
//	TASKS_REQUEST_TIMEOUT   per-request store deadline (default 5s)
type Config struct {
	Port           int
	Driver         StorageDriver
	SQLitePath     string
	DatabaseURL    string
	LogLevel       slog.Level
	LogFormat      string
	RequestTimeout time.Duration
}

// LoadConfig reads an optional .env file from the working directory and then
// the environment. Values already set in the environment win over .env.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return ConfigFromEnv(os.Getenv)
}

// ConfigFromEnv builds a Config from a lookup function such as os.Getenv.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:           DefaultPort,
		Driver:         StorageSQLite,
		SQLitePath:     DefaultSQLitePath,
		DatabaseURL:    getenv("DATABASE_URL"),
		LogLevel:       slog.LevelInfo,
		LogFormat:      "text",
		RequestTimeout: DefaultRequestTimeout,
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := getenv("TASKS_STORAGE_DRIVER"); v != "" {
		driver, err := ParseStorageDriver(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Driver = driver
	}
	if v := getenv("TASKS_SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}
	if v := getenv("TASKS_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid TASKS_LOG_LEVEL %q: %w", v, err)
		}
	}
	if v := getenv("TASKS_LOG_FORMAT"); v != "" {
		v = strings.ToLower(v)
		if v != "text" && v != "json" {
			return Config{}, fmt.Errorf("invalid TASKS_LOG_FORMAT %q: must be text or json", v)
		}
		cfg.LogFormat = v
	}
	if v := getenv("TASKS_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid TASKS_REQUEST_TIMEOUT %q", v)
		}
		cfg.RequestTimeout = d
	}
	return cfg, nil
}

func ParseStorageDriver(s string) (StorageDriver, error) {
	switch d := StorageDriver(strings.ToLower(strings.TrimSpace(s))); d {
	case StorageMemory, StorageSQLite, StoragePostgres:
		return d, nil
	default:
		return "", fmt.Errorf("unknown storage driver %q", s)
	}
}

// Addr is the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// NewLogger builds the process logger described by the config.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
