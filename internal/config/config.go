package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Ingest   IngestConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LoggerConfig struct {
	Level  string
	Format string
}

// Catalog drivers selected by the CONNECTION_STRING scheme.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	ConnectTimeout   time.Duration
}

// Driver reports which catalog adapter the connection string targets.
func (d DatabaseConfig) Driver() string {
	if strings.HasPrefix(d.ConnectionString, "postgres://") || strings.HasPrefix(d.ConnectionString, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// DSN returns the connection string in the form the selected driver expects.
// sqlite:///vessel.db becomes vessel.db and sqlite:////var/lib/vessel.db
// becomes /var/lib/vessel.db.
func (d DatabaseConfig) DSN() string {
	if d.Driver() == DriverPostgres {
		return d.ConnectionString
	}
	return strings.TrimPrefix(d.ConnectionString, "sqlite:///")
}

type StorageConfig struct {
	FilePath           string
	VerifyDedup        bool
	ScratchMaxAge      time.Duration
	ScratchSweepPeriod time.Duration
}

type IngestConfig struct {
	ChunkSize     int
	HashAlgorithm string
	HashLength    int
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("CONNECTION_STRING", "sqlite:///vessel.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_CONNECT_TIMEOUT", "30s")
	v.SetDefault("FILE_PATH", "/tmp/vessel")
	v.SetDefault("CONTENT_VERIFY_DEDUP", true)
	v.SetDefault("SCRATCH_MAX_AGE", "24h")
	v.SetDefault("SCRATCH_SWEEP_INTERVAL", "1h")
	v.SetDefault("CHUNK_SIZE", 8192)
	v.SetDefault("HASH_ALGORITHM", "sha1")
	v.SetDefault("HASH_LENGTH", 16)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_NAMESPACE", "vessel")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Database: DatabaseConfig{
			ConnectionString: v.GetString("CONNECTION_STRING"),
			MaxOpenConns:     v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:     v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:  v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnectTimeout:   v.GetDuration("DB_CONNECT_TIMEOUT"),
		},
		Storage: StorageConfig{
			FilePath:           v.GetString("FILE_PATH"),
			VerifyDedup:        v.GetBool("CONTENT_VERIFY_DEDUP"),
			ScratchMaxAge:      v.GetDuration("SCRATCH_MAX_AGE"),
			ScratchSweepPeriod: v.GetDuration("SCRATCH_SWEEP_INTERVAL"),
		},
		Ingest: IngestConfig{
			ChunkSize:     v.GetInt("CHUNK_SIZE"),
			HashAlgorithm: strings.ToLower(v.GetString("HASH_ALGORITHM")),
			HashLength:    v.GetInt("HASH_LENGTH"),
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("METRICS_ENABLED"),
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	case c.Database.ConnectionString == "":
		return fmt.Errorf("CONNECTION_STRING is required")
	case c.Database.Driver() == DriverSQLite && !strings.HasPrefix(c.Database.ConnectionString, "sqlite:///"):
		return fmt.Errorf("CONNECTION_STRING must start with sqlite:/// or postgres://, got %q", c.Database.ConnectionString)
	case c.Database.MaxOpenConns <= 0:
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns)
	case c.Database.MaxIdleConns < 0:
		return fmt.Errorf("DB_MAX_IDLE_CONNS must not be negative, got %d", c.Database.MaxIdleConns)
	case c.Database.ConnectTimeout <= 0:
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be positive, got %s", c.Database.ConnectTimeout)
	case c.Storage.FilePath == "":
		return fmt.Errorf("FILE_PATH is required")
	case c.Storage.ScratchSweepPeriod <= 0:
		return fmt.Errorf("SCRATCH_SWEEP_INTERVAL must be positive, got %s", c.Storage.ScratchSweepPeriod)
	case c.Storage.ScratchMaxAge <= 0:
		return fmt.Errorf("SCRATCH_MAX_AGE must be positive, got %s", c.Storage.ScratchMaxAge)
	case c.Ingest.ChunkSize <= 0:
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.Ingest.ChunkSize)
	case c.Ingest.HashLength < 0:
		return fmt.Errorf("HASH_LENGTH must not be negative, got %d", c.Ingest.HashLength)
	}

	if c.Database.Driver() == DriverPostgres {
		if _, err := url.Parse(c.Database.ConnectionString); err != nil {
			return fmt.Errorf("parse CONNECTION_STRING: %w", err)
		}
	}
	return nil
}
