// Package indexer holds the settings for the index/purge phases' external
// collaborators: the on-disk data directory, the traject subprocess, and
// the Solr-style search server.
package indexer

import "time"

// Default configuration values.
const (
	DefaultTrajectBinary       = "traject"
	DefaultSolrCommitWithinMs  = 5000
	DefaultRecordTimeout       = 30 * time.Second
)

// Config names the settings the index/purge phases and their traject
// backend need (§4.5, §6).
type Config struct {
	DataDir              string        `env:"HARVESTER_DATA_DIR"                yaml:"data_dir"`
	OaiRepository        string        `env:"HARVESTER_OAI_REPOSITORY"          yaml:"oai_repository"`
	TrajectBinary        string        `env:"HARVESTER_TRAJECT_BINARY"          yaml:"traject_binary"`
	TrajectConfiguration string        `env:"HARVESTER_TRAJECT_CONFIG"          yaml:"traject_configuration"`
	Repository           string        `env:"HARVESTER_TRAJECT_REPOSITORY"      yaml:"repository"`
	SolrURL              string        `env:"HARVESTER_SOLR_URL"                yaml:"solr_url"`
	SolrCommitWithinMs   int           `env:"HARVESTER_SOLR_COMMIT_WITHIN_MS"   yaml:"solr_commit_within_ms"`
	RecordTimeout        time.Duration `env:"HARVESTER_INDEX_RECORD_TIMEOUT"    yaml:"record_timeout"`
}

// NewConfig returns a Config populated with production-safe defaults.
func NewConfig() *Config {
	return &Config{
		TrajectBinary:      DefaultTrajectBinary,
		SolrCommitWithinMs: DefaultSolrCommitWithinMs,
		RecordTimeout:      DefaultRecordTimeout,
	}
}
