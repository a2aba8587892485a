// Package harvester implements the harvester phases (§4.4): import,
// download, and metadata, run strictly in that order (§5), owning the
// harvest-status half of the record lifecycle.
package harvester

import (
	"context"
	"fmt"
	"time"

	"github.com/oai-harvest/harvester/internal/batchworker"
	"github.com/oai-harvest/harvester/internal/logger"
	"github.com/oai-harvest/harvester/internal/metrics"
	"github.com/oai-harvest/harvester/internal/oaiclient"
	"github.com/oai-harvest/harvester/internal/store"
	"github.com/oai-harvest/harvester/internal/xmlrules"
)

// Config names the endpoint/prefix this Harvester instance drives, plus
// the per-call timeout applied to identify/list_identifiers/get_record.
type Config struct {
	Endpoint       string
	MetadataPrefix string
	DataDir        string
	OaiTimeout     time.Duration
	Preview        bool
}

// Harvester bundles the collaborators the three phases share.
type Harvester struct {
	Config  Config
	Store   *store.Store
	OAI     oaiclient.Client
	RuleSet *xmlrules.RuleSet
	Log     logger.Interface
	Metrics *metrics.Metrics
}

func (h *Harvester) recordBatch(phase string) batchworker.BatchRecorder {
	if h.Metrics == nil {
		return nil
	}
	return func(size int, duration time.Duration, succeeded, failed int) {
		h.Metrics.RecordBatch(phase, size, duration, succeeded, failed)
	}
}

// ImportResult is the import phase's reported outcome (§4.4.1).
type ImportResult struct {
	Processed int
	Imported  int
	Deleted   int
}

// Run executes import, then download, then metadata (§5: the harvester
// runs its phases strictly in order).
func (h *Harvester) Run(ctx context.Context) (ImportResult, batchworker.Result, batchworker.Result, error) {
	importResult, err := h.RunImport(ctx)
	if err != nil {
		return importResult, batchworker.Result{}, batchworker.Result{}, fmt.Errorf("import phase: %w", err)
	}

	downloadResult, err := h.RunDownload(ctx)
	if err != nil {
		return importResult, downloadResult, batchworker.Result{}, fmt.Errorf("download phase: %w", err)
	}

	metadataResult, err := h.RunMetadata(ctx)
	if err != nil {
		return importResult, downloadResult, metadataResult, fmt.Errorf("metadata phase: %w", err)
	}

	return importResult, downloadResult, metadataResult, nil
}
