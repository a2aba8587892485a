package harvester

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oai-harvest/harvester/internal/batchworker"
	"github.com/oai-harvest/harvester/internal/domain"
)

// RunDownload sweeps status=pending records, fetching each one's XML
// payload from the OAI repository and writing it to disk (§4.4.2).
func (h *Harvester) RunDownload(ctx context.Context) (batchworker.Result, error) {
	driver := batchworker.Driver{
		Fetch: func(ctx context.Context, after string) ([]domain.RecordRef, error) {
			return h.Store.PendingDownload(ctx, h.Config.Endpoint, h.Config.MetadataPrefix, after)
		},
		Work:        h.downloadOne,
		MarkSuccess: h.Store.DownloadSucceeded,
		MarkFailure: h.Store.DownloadFailed,
		Preview:     h.Config.Preview,
		Log:         h.Log.WithComponent("download"),
		Metrics:     h.recordBatch("download"),
	}
	return driver.Run(ctx)
}

func (h *Harvester) downloadOne(ctx context.Context, record domain.RecordRef) error {
	ctx, cancel := context.WithTimeout(ctx, h.Config.OaiTimeout)
	defer cancel()

	resp, err := h.OAI.GetRecord(ctx, record.Identifier, h.Config.MetadataPrefix)
	if err != nil {
		return fmt.Errorf("get_record: %w", err)
	}
	if resp.Payload == nil {
		return fmt.Errorf("get_record returned missing payload for %s", record.Identifier)
	}

	path := filepath.Join(h.Config.DataDir, record.Path())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(resp.Payload.Metadata), 0o644); err != nil {
		return fmt.Errorf("write record payload: %w", err)
	}

	return nil
}
