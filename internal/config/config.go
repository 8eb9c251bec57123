// Package config handles loading and parsing application configuration.
// Values come from, in priority order:
//  1. Environment variables (a .env file in the working directory is
//     loaded into the environment first, without overriding what is
//     already set)
//  2. A YAML file named by CONFIG_PATH or the --config flag
//  3. The env-default tags below
//
// The YAML file is optional. Without one the whole configuration is
// read from the environment, which is how the service runs in a
// container.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers accepted in Storage.Driver.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	HTTPServer `yaml:"http_server"`

	Storage Storage `yaml:"storage"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr         string        `yaml:"address"       env:"HTTP_SERVER_ADDR"  env-default:"localhost:8082"`
	ReadTimeout  time.Duration `yaml:"read_timeout"  env:"HTTP_READ_TIMEOUT"  env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"  env:"HTTP_IDLE_TIMEOUT"  env-default:"60s"`
}

// Storage holds the database connection parameters.
// The DB_* names match the variables the service has always used.
type Storage struct {
	// Driver selects the backend: mysql, postgres, sqlite or memory.
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"mysql"`

	// Path is the SQLite file, only used by the sqlite driver.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/storage.db"`

	Host     string `yaml:"host"     env:"DB_HOSTNAME" env-default:"localhost"`
	Port     int    `yaml:"port"     env:"DB_PORT"`
	User     string `yaml:"user"     env:"DB_USERNAME"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name"     env:"DB_NAME"     env-default:"students"`

	// SSLMode is passed through to PostgreSQL.
	SSLMode string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

// Load reads the configuration from path, or from the environment
// alone when path is empty, and validates it.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the values cleanenv cannot check through tags.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMySQL, DriverPostgres:
		if c.Storage.Name == "" {
			return fmt.Errorf("storage.name is required for the %s driver", c.Storage.Driver)
		}
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	return nil
}

// MustLoad reads, validates, and returns the application config.
// Functions prefixed with "Must" are allowed to exit on failure: if this
// returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
