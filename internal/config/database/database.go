// Package database provides record-store connection configuration.
package database

import "time"

// Default configuration values.
const (
	DefaultHost    = "localhost"
	DefaultPort    = "5432"
	DefaultUser    = "postgres"
	DefaultDBName  = "harvester"
	DefaultSSLMode = "disable"

	// DefaultMaxOpenConns bounds the pool per §5 (Database connection pool,
	// default ≤ 10).
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultPingTimeout     = 5 * time.Second
)

// Config represents record-store connection settings.
type Config struct {
	Host         string `env:"HARVESTER_DB_HOST"     yaml:"host"`
	Port         string `env:"HARVESTER_DB_PORT"     yaml:"port"`
	User         string `env:"HARVESTER_DB_USER"     yaml:"user"`
	Password     string `env:"HARVESTER_DB_PASSWORD" yaml:"password"`
	DBName       string `env:"HARVESTER_DB_NAME"     yaml:"dbname"`
	SSLMode      string `env:"HARVESTER_DB_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns int    `env:"HARVESTER_DB_MAX_OPEN_CONNS" yaml:"max_open_conns"`
}

// NewConfig returns a Config populated with production-safe defaults.
func NewConfig() *Config {
	return &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		User:         DefaultUser,
		DBName:       DefaultDBName,
		SSLMode:      DefaultSSLMode,
		MaxOpenConns: DefaultMaxOpenConns,
	}
}
