// Package oai holds the settings for the harvest phases' OAI-PMH
// collaborator: which repository to talk to, and how patient to be.
package oai

import "time"

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 3
)

// Config names the OAI-PMH repository a harvest run targets, the per-call
// timeout applied to identify/list_identifiers/get_record, and the retry
// count applied to get_record only (§4.4).
type Config struct {
	Endpoint       string        `env:"HARVESTER_OAI_ENDPOINT"        yaml:"endpoint"`
	MetadataPrefix string        `env:"HARVESTER_OAI_METADATA_PREFIX" yaml:"metadata_prefix"`
	Timeout        time.Duration `env:"HARVESTER_OAI_TIMEOUT"         yaml:"timeout"`
	Retries        int           `env:"HARVESTER_OAI_RETRIES"         yaml:"retries"`
}

// NewConfig returns a Config populated with production-safe defaults.
func NewConfig() *Config {
	return &Config{
		Timeout: DefaultTimeout,
		Retries: DefaultRetries,
	}
}
