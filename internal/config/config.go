package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// SourceMode selects the data source adapter strategy.
const (
	// ModeStore reads the collection as-is (read-through).
	ModeStore = "store"
	// ModeSeed seeds the collection from the CSV file when empty, then reads.
	ModeSeed = "seed"
)

type Server struct {
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
}

type Store struct {
	URI            string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"DB_NAME" default:"weather"`
	Collection     string        `envconfig:"COLLECTION_NAME" default:"observations"`
	ConnectTimeout time.Duration `envconfig:"STORE_CONNECT_TIMEOUT" default:"10s"`
	QueryTimeout   time.Duration `envconfig:"STORE_QUERY_TIMEOUT" default:"30s"`
}

type Dataset struct {
	// SourceMode is "store" (read-through) or "seed" (seed-then-read).
	SourceMode    string `envconfig:"SOURCE_MODE" default:"store"`
	SeedFile      string `envconfig:"SEED_FILE" default:"./data/weather.csv"`
	SeedBatchSize int    `envconfig:"SEED_BATCH_SIZE" default:"1000"`
}

type Logging struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type Config struct {
	Server  Server
	Store   Store
	Dataset Dataset
	Logging Logging
}

// LoadConfig reads configuration from the environment, with an optional
// .env file for local development.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Store.URI == "" {
		return fmt.Errorf("store URI must not be empty")
	}
	if c.Dataset.SourceMode != ModeStore && c.Dataset.SourceMode != ModeSeed {
		return fmt.Errorf("invalid source mode %q: expected %q or %q",
			c.Dataset.SourceMode, ModeStore, ModeSeed)
	}
	if c.Dataset.SourceMode == ModeSeed && c.Dataset.SeedFile == "" {
		return fmt.Errorf("seed mode requires a seed file path")
	}
	if c.Dataset.SeedBatchSize <= 0 {
		return fmt.Errorf("invalid seed batch size: %d", c.Dataset.SeedBatchSize)
	}
	return nil
}

// Fingerprint identifies the adapter configuration for cache keying. Loads
// are memoized per fingerprint; changing any source parameter is the only
// invalidation trigger.
func (c *Config) Fingerprint() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		c.Store.URI, c.Store.Database, c.Store.Collection,
		c.Dataset.SourceMode, c.Dataset.SeedFile)
}
