package traject

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/oai-harvest/harvester/internal/domain"
)

// Indexer implements indexer.Backend against a traject subprocess and a
// Solr-style search server, grounded on original_source's ArcLightIndexer.
type Indexer struct {
	cfg            Config
	repositoryFile string
	httpClient     *http.Client
}

// New returns an Indexer. Call Preflight before the first Run.
func New(cfg Config) *Indexer {
	return &Indexer{cfg: cfg, httpClient: &http.Client{}}
}

// Preflight verifies the traject binary is usable and materializes the
// repositories config file traject's subprocess reads via REPOSITORY_FILE.
func (idx *Indexer) Preflight() error {
	if err := idx.cfg.Preflight(); err != nil {
		return err
	}
	path, err := idx.cfg.writeRepositoryConfig()
	if err != nil {
		return err
	}
	idx.repositoryFile = path
	return nil
}

// IndexRecord implements indexer.Backend (§4.5.2): spawns traject against
// the record's on-disk XML, piping and draining stdout/stderr, enforcing
// RecordTimeout with a hard kill.
func (idx *Indexer) IndexRecord(ctx context.Context, record domain.RecordRef) error {
	ctx, cancel := context.WithTimeout(ctx, idx.cfg.RecordTimeout)
	defer cancel()

	path := filepath.Join(idx.cfg.DataDir, record.Path())

	cmd := exec.CommandContext(ctx, idx.cfg.Binary,
		"-i", "xml",
		"-c", idx.cfg.Configuration,
		"-s", fmt.Sprintf("repository=%s", idx.cfg.Repository),
		"-s", fmt.Sprintf("id=%s", record.Fingerprint),
		"-u", idx.cfg.SolrURL,
		path,
	)
	cmd.Env = append(os.Environ(), "REPOSITORY_FILE="+idx.repositoryFile)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return fmt.Errorf("traject timed out after %s", idx.cfg.RecordTimeout)
	}
	if err != nil {
		return fmt.Errorf("traject failed: %s", stderr.String())
	}
	return nil
}

type solrDeleteRequest struct {
	Delete solrDeleteBody `json:"delete"`
}

type solrDeleteBody struct {
	Query         string `json:"query"`
	CommitWithin  int    `json:"commitWithin"`
}

// DeleteRecord implements indexer.Backend (§4.5.3): posts a delete-by-query
// document to the Solr update endpoint.
func (idx *Indexer) DeleteRecord(ctx context.Context, record domain.RecordRef) error {
	ctx, cancel := context.WithTimeout(ctx, idx.cfg.RecordTimeout)
	defer cancel()

	payload, err := json.Marshal(solrDeleteRequest{
		Delete: solrDeleteBody{
			Query:        fmt.Sprintf("_root_:%s", record.Fingerprint),
			CommitWithin: idx.cfg.SolrCommitWithinMs,
		},
	})
	if err != nil {
		return fmt.Errorf("encode Solr delete payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, idx.cfg.solrUpdateURL(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build Solr delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := idx.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("Solr delete timed out after %s", idx.cfg.RecordTimeout)
		}
		return fmt.Errorf("call Solr delete API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body bytes.Buffer
		body.ReadFrom(resp.Body)
		return fmt.Errorf("Solr delete API returned %d: %s", resp.StatusCode, truncateBody(body.String()))
	}

	return nil
}

func truncateBody(s string) string {
	const max = 400
	if len(s) <= max {
		return s
	}
	return s[:max] + "...[truncated]"
}
