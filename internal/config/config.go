package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// supportedDrivers are the allowed values of the DB_DRIVER environment variable.
var supportedDrivers = []string{"sqlite", "sqlite3", "mysql"}

// Config holds everything the service needs to start.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string        `env:"PORT"             envDefault:"5000"`
	Mode            string        `env:"GIN_MODE"         envDefault:"release"`
	Logging         string        `env:"GIN_LOGGING"      envDefault:"on"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// RequestLogging returns false if per-request logging was switched off with GIN_LOGGING=off.
func (c ServerConfig) RequestLogging() bool {
	return !strings.EqualFold(c.Logging, "off")
}

type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER"  envDefault:"sqlite"`
	Path     string `env:"DB_PATH"    envDefault:"contacts.db"`
	Host     string `env:"DBHOST"     envDefault:"localhost:3306"`
	User     string `env:"DBUSER"     envDefault:"root"`
	Password string `env:"DBPWD"`
	Name     string `env:"DBNAME"     envDefault:"test"`
	Migrate  bool   `env:"DB_MIGRATE" envDefault:"true"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads the configuration from a .env file in the working directory, if there is one, and
// from the environment variables. Variables that are already set take precedence over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment variables only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains(supportedDrivers, c.Database.Driver) {
		return fmt.Errorf("invalid DB_DRIVER %q, must be one of %s",
			c.Database.Driver, strings.Join(supportedDrivers, ", "))
	}
	if c.Database.Driver != "mysql" && strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS must not be empty")
	}
	return nil
}
