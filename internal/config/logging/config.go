// Package logging adapts Viper-sourced settings into an internal/logger.Config.
package logging

import "github.com/oai-harvest/harvester/internal/logger"

// Config holds logging settings as read from file/env/flags.
type Config struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	Encoding    string `yaml:"encoding"`
}

// ToLoggerConfig converts to the shape internal/logger.New expects.
func (c *Config) ToLoggerConfig() *logger.Config {
	return &logger.Config{
		Level:       logger.Level(c.Level),
		Development: c.Development,
		Encoding:    c.Encoding,
	}
}
