package indexer

import (
	"context"
	"time"

	"github.com/oai-harvest/harvester/internal/batchworker"
	"github.com/oai-harvest/harvester/internal/domain"
	"github.com/oai-harvest/harvester/internal/logger"
	"github.com/oai-harvest/harvester/internal/metrics"
	"github.com/oai-harvest/harvester/internal/store"
)

// Indexer drives the index and purge phases (§4.5) against a record
// store and a search Backend.
type Indexer struct {
	Store   *store.Store
	Backend Backend
	Log     logger.Interface
	Metrics *metrics.Metrics
}

func (idx *Indexer) recordBatch(phase string) batchworker.BatchRecorder {
	if idx.Metrics == nil {
		return nil
	}
	return func(size int, duration time.Duration, succeeded, failed int) {
		idx.Metrics.RecordBatch(phase, size, duration, succeeded, failed)
	}
}

// Run executes the index phase then the purge phase in sequence (§4.5,
// §5 "the indexer runs index then purge") and returns their combined
// outcome (§4.5.5).
func (idx *Indexer) Run(ctx context.Context, opts RunOptions) (Outcome, error) {
	var out Outcome

	indexResult, err := idx.runIndexPhase(ctx, opts)
	if err != nil {
		return out, err
	}
	out.Indexed = indexResult.Succeeded
	out.FailedIndex = indexResult.Failed

	purgeResult, err := idx.runPurgePhase(ctx, opts)
	if err != nil {
		return out, err
	}
	out.Purged = purgeResult.Succeeded
	out.FailedPurge = purgeResult.Failed

	return out, nil
}

func (idx *Indexer) runIndexPhase(ctx context.Context, opts RunOptions) (batchworker.Result, error) {
	fetch := func(ctx context.Context, after string) ([]domain.RecordRef, error) {
		if opts.Mode == FailedOnly {
			return idx.Store.FailedIndex(ctx, opts.Endpoint, opts.MetadataPrefix, opts.OaiRepository, after, store.FailedFilter{
				MessageContains: opts.Filter.MessageContains,
				MaxAttempts:     opts.Filter.MaxAttempts,
			})
		}
		return idx.Store.PendingIndex(ctx, opts.Endpoint, opts.MetadataPrefix, opts.OaiRepository, after)
	}

	driver := batchworker.Driver{
		Fetch:       fetch,
		Work:        idx.Backend.IndexRecord,
		MarkSuccess: idx.Store.IndexSucceeded,
		MarkFailure: idx.Store.IndexFailed,
		Preview:     opts.Preview,
		Log:         idx.Log.WithComponent("index"),
		Metrics:     idx.recordBatch("index"),
	}
	return driver.Run(ctx)
}

func (idx *Indexer) runPurgePhase(ctx context.Context, opts RunOptions) (batchworker.Result, error) {
	fetch := func(ctx context.Context, after string) ([]domain.RecordRef, error) {
		if opts.Mode == FailedOnly {
			return idx.Store.FailedPurge(ctx, opts.Endpoint, opts.MetadataPrefix, opts.OaiRepository, after, store.FailedFilter{
				MessageContains: opts.Filter.MessageContains,
				MaxAttempts:     opts.Filter.MaxAttempts,
			})
		}
		return idx.Store.PendingPurge(ctx, opts.Endpoint, opts.MetadataPrefix, opts.OaiRepository, after)
	}

	driver := batchworker.Driver{
		Fetch:       fetch,
		Work:        idx.Backend.DeleteRecord,
		MarkSuccess: idx.Store.PurgeSucceeded,
		MarkFailure: idx.Store.PurgeFailed,
		Preview:     opts.Preview,
		Log:         idx.Log.WithComponent("purge"),
		Metrics:     idx.recordBatch("purge"),
	}
	return driver.Run(ctx)
}
