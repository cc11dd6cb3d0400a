// Package config loads process configuration from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
)

// Database drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds every setting the server and CLI read at startup
type Config struct {
	Port        string `env:"PORT" envDefault:"3001"`
	JWTSecret   string `env:"JWT_SECRET"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	// DevMode allows an empty JWT_SECRET, falling back to the built-in development secret
	DevMode bool `env:"DEV_MODE" envDefault:"false"`

	Database DatabaseConfig
	Log      LogConfig
}

// DatabaseConfig selects and tunes the SQL backend
type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"mysql"`
	Host            string        `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port            string        `env:"DB_PORT" envDefault:"4000"`
	User            string        `env:"DB_USER" envDefault:"root"`
	Password        string        `env:"DB_PASSWORD"`
	Name            string        `env:"DB_NAME" envDefault:"modules"`
	TLS             string        `env:"DB_TLS" envDefault:"auto"` // auto | true | false
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"data/modules.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"3m"`
}

// LogConfig mirrors logging.Config with env tags
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
}

// Logging converts to the logging package's config
func (l LogConfig) Logging() logging.Config {
	return logging.Config{
		Level:      l.Level,
		Format:     l.Format,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
	}
}

// UseTLS reports whether the MySQL connection should be encrypted.
// "auto" enables TLS for any host that is not local.
func (d DatabaseConfig) UseTLS() bool {
	switch strings.ToLower(d.TLS) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return d.Host != "" && d.Host != "127.0.0.1" && d.Host != "localhost"
}

// Load reads the first .env file found among files (default ".env"), then
// parses the environment. Variables already set win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", f, err)
			}
			break
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.Database.Driver, DriverMySQL, DriverSQLite)
	}
	if c.Database.Driver == DriverSQLite && c.Database.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	if c.JWTSecret == "" && !c.DevMode {
		return fmt.Errorf("JWT_SECRET is required (set DEV_MODE=true to use the development secret)")
	}
	return nil
}
