package harvester

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oai-harvest/harvester/internal/batchworker"
	"github.com/oai-harvest/harvester/internal/domain"
	"github.com/oai-harvest/harvester/internal/store"
	"github.com/oai-harvest/harvester/internal/xmlrules"
)

// RunMetadata sweeps status=available records, extracting structured
// fields from their on-disk XML via the configured rule set (§4.4.3).
func (h *Harvester) RunMetadata(ctx context.Context) (batchworker.Result, error) {
	// extracted hands the fields computed in Work across to MarkSuccess:
	// the worker loop's generic contract only carries (record, error)
	// between the two, so each successful extraction is parked here,
	// keyed by identifier, for the lifetime of one batch sweep. Guarded
	// by a mutex because Work runs under the worker loop's bounded
	// concurrent fan-out.
	extracted := struct {
		mu     sync.Mutex
		fields map[string]map[string][]string
	}{fields: make(map[string]map[string][]string)}

	work := func(ctx context.Context, record domain.RecordRef) error {
		fields, err := h.extractFields(record)
		if err != nil {
			return err
		}
		extracted.mu.Lock()
		extracted.fields[record.Identifier] = fields
		extracted.mu.Unlock()
		return nil
	}

	markSuccess := func(ctx context.Context, record domain.RecordRef) (bool, error) {
		extracted.mu.Lock()
		fields, ok := extracted.fields[record.Identifier]
		delete(extracted.fields, record.Identifier)
		extracted.mu.Unlock()
		if !ok {
			return false, fmt.Errorf("no extracted fields cached for %s", record.Identifier)
		}

		encoded, err := store.EncodeMetadata(fields)
		if err != nil {
			return false, err
		}
		return h.Store.MetadataSucceeded(ctx, record, encoded)
	}

	driver := batchworker.Driver{
		Fetch: func(ctx context.Context, after string) ([]domain.RecordRef, error) {
			return h.Store.PendingMetadata(ctx, h.Config.Endpoint, h.Config.MetadataPrefix, after)
		},
		Work:        work,
		MarkSuccess: markSuccess,
		MarkFailure: h.Store.MetadataFailed,
		Preview:     h.Config.Preview,
		Log:         h.Log.WithComponent("metadata"),
		Metrics:     h.recordBatch("metadata"),
	}
	return driver.Run(ctx)
}

func (h *Harvester) extractFields(record domain.RecordRef) (map[string][]string, error) {
	path := filepath.Join(h.Config.DataDir, record.Path())

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record payload: %w", err)
	}
	defer file.Close()

	fields, err := xmlrules.Extract(file, h.RuleSet)
	if err != nil {
		return nil, fmt.Errorf("extract metadata: %w", err)
	}

	return fields, nil
}
