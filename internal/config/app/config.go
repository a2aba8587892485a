// Package app holds the application-identity settings that don't belong
// to any single subsystem's config.
package app

// Config represents application-wide settings.
type Config struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}
