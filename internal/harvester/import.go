package harvester

import (
	"context"
	"fmt"

	"github.com/oai-harvest/harvester/internal/domain"
)

// importBatchSize is the fixed page size headers are grouped into before
// each upsert call (§4.4.1).
const importBatchSize = 100

// RunImport streams every OAI-PMH header into fixed-size batches and
// upserts each into the record store (§4.4.1). identify() is called first
// as a liveness probe; a protocol error on either call fails the whole
// phase, as does an exhausted page timeout.
func (h *Harvester) RunImport(ctx context.Context) (ImportResult, error) {
	var total ImportResult

	identifyCtx, cancel := context.WithTimeout(ctx, h.Config.OaiTimeout)
	defer cancel()
	if err := h.OAI.Identify(identifyCtx); err != nil {
		return total, fmt.Errorf("OAI identify failed: %w", err)
	}

	pages, err := h.OAI.ListIdentifiers(ctx, h.Config.MetadataPrefix)
	if err != nil {
		return total, fmt.Errorf("start list_identifiers: %w", err)
	}
	defer pages.Close()

	batch := make([]domain.OaiHeader, 0, importBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		result, err := h.Store.ImportBatch(ctx, h.Config.Endpoint, h.Config.MetadataPrefix, batch)
		if err != nil {
			return err
		}
		total.Processed += result.Processed
		total.Imported += result.Imported
		total.Deleted += result.Deleted
		batch = batch[:0]
		return nil
	}

	for {
		pageCtx, pageCancel := context.WithTimeout(ctx, h.Config.OaiTimeout)
		page, ok, err := pages.Next(pageCtx)
		pageCancel()
		if err != nil {
			return total, fmt.Errorf("list_identifiers page fetch: %w", err)
		}
		if !ok {
			break
		}
		if page.Error != nil {
			return total, fmt.Errorf("OAI-PMH list_identifiers error: %w", page.Error)
		}

		for _, header := range page.Headers {
			batch = append(batch, header)
			if len(batch) >= importBatchSize {
				if err := flush(); err != nil {
					return total, fmt.Errorf("import batch upsert: %w", err)
				}
			}
		}
	}

	if err := flush(); err != nil {
		return total, fmt.Errorf("import final batch upsert: %w", err)
	}

	h.Log.Info("import phase complete",
		"processed", total.Processed, "imported", total.Imported, "deleted", total.Deleted)
	if h.Metrics != nil {
		h.Metrics.RecordImport(total.Processed, total.Imported, total.Deleted)
	}

	return total, nil
}
