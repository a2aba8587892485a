// Package traject implements the concrete indexer.Backend capability (§9's
// "dispatch across indexer backends" design note): an external indexer
// subprocess invocation and a Solr-style search-server HTTP client
// (§4.5.2, §4.5.3, §6). Grounded on original_source's arclight indexer.
package traject

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Config configures one Indexer instance.
type Config struct {
	// Binary is the traject executable name or path.
	Binary string
	// Configuration is the traject config file passed via -c.
	Configuration string
	// DataDir is the root the record's fingerprint-derived XML path is
	// resolved against.
	DataDir string
	// Repository is the `-s repository=<value>` setting name and the
	// value written into the generated repository-config file.
	Repository string
	// OaiRepository is the human-readable repository name traject's
	// generated config file maps Repository to.
	OaiRepository string
	// SolrURL is the base Solr core URL (no trailing /update).
	SolrURL string
	// SolrCommitWithinMs bounds how long Solr may delay a delete commit.
	SolrCommitWithinMs int
	// RecordTimeout bounds every per-record subprocess run and HTTP call
	// (§4.5.2, §4.5.3).
	RecordTimeout time.Duration
}

func (c Config) solrUpdateURL() string {
	return fmt.Sprintf("%s/update", trimTrailingSlash(c.SolrURL))
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// Preflight runs `traject --version` to fail fast before the index phase
// starts, rather than failing once per record (supplemented from
// original_source's ensure_traject_available).
func (c Config) Preflight() error {
	cmd := exec.Command(c.Binary, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("traject binary %q not usable: %w", c.Binary, err)
	}
	return nil
}

// writeRepositoryConfig materializes the temporary YAML repositories file
// traject's REPOSITORY_FILE environment variable points at (supplemented
// from original_source's generate_repository_file).
func (c Config) writeRepositoryConfig() (string, error) {
	path := filepath.Join(os.TempDir(), "harvester-repositories.yml")
	content := fmt.Sprintf("%s:\n  name: %q\n", c.Repository, c.OaiRepository)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write repository config: %w", err)
	}
	return path, nil
}
