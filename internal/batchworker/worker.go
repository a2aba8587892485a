// Package batchworker implements the generic, keyset-paginated batch
// driver shared by every harvester and indexer phase (§4.3): fetch a page
// of candidates, run a bounded-concurrency fan-out of per-record work,
// apply the resulting transition, and repeat until a short page signals
// the sweep is done.
package batchworker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oai-harvest/harvester/internal/domain"
	"github.com/oai-harvest/harvester/internal/logger"
)

// Concurrency is the fixed fan-out width per batch (§4.3, §5: C=10).
const Concurrency = 10

// BatchSize is the fixed page size (§4.2, §4.3: B=100).
const BatchSize = 100

// Fetch returns up to BatchSize candidates strictly after afterIdentifier,
// or an empty slice when the sweep has no more work.
type Fetch func(ctx context.Context, afterIdentifier string) ([]domain.RecordRef, error)

// Work performs the per-record side effect (download, parse, index,
// purge) for one candidate.
type Work func(ctx context.Context, record domain.RecordRef) error

// MarkSuccess applies the phase's success transition. It returns whether
// the row actually moved (false means a concurrent worker already
// transitioned it out from under this one — not an error, per I8).
type MarkSuccess func(ctx context.Context, record domain.RecordRef) (bool, error)

// MarkFailure applies the phase's failure transition with the given
// (already-truncated) message.
type MarkFailure func(ctx context.Context, record domain.RecordRef, message string) (bool, error)

// Result is the (succeeded, failed) tally a sweep returns (§4.3 step 9).
type Result struct {
	Succeeded int
	Failed    int
}

// BatchRecorder reports one completed batch's size, duration, and outcome
// tally to a metrics sink. Optional: a nil Metrics field skips reporting.
type BatchRecorder func(size int, duration time.Duration, succeeded, failed int)

// Driver bundles everything one phase sweep needs. Preview runs every
// fetched batch through the log-only path without calling Work or either
// Mark function (P9: preview leaves every column untouched).
type Driver struct {
	Fetch       Fetch
	Work        Work
	MarkSuccess MarkSuccess
	MarkFailure MarkFailure
	Preview     bool
	Log         logger.Interface
	Metrics     BatchRecorder
}

// outcome pairs a candidate with the result of running Work on it.
type outcome struct {
	record domain.RecordRef
	err    error
}

// Run drives the sweep to completion or until ctx is cancelled between
// batches (§5: cancellation is polled between batches, never mid-batch).
func (d *Driver) Run(ctx context.Context) (Result, error) {
	var result Result
	last := ""

	for {
		batch, err := d.Fetch(ctx, last)
		if err != nil {
			return result, err
		}
		if len(batch) == 0 {
			return result, nil
		}
		last = batch[len(batch)-1].Identifier

		if d.Preview {
			for _, r := range batch {
				d.Log.Info("preview: would process record", "identifier", r.Identifier, "fingerprint", r.Fingerprint)
			}
			result.Succeeded += len(batch)
		} else {
			start := time.Now()
			before := result
			if err := d.runBatch(ctx, batch, &result); err != nil {
				return result, err
			}
			if d.Metrics != nil {
				d.Metrics(len(batch), time.Since(start), result.Succeeded-before.Succeeded, result.Failed-before.Failed)
			}
		}

		if len(batch) < BatchSize {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, nil
		default:
		}
	}
}

func (d *Driver) runBatch(ctx context.Context, batch []domain.RecordRef, result *Result) error {
	outcomes := make([]outcome, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Concurrency)

	for i, record := range batch {
		i, record := i, record
		g.Go(func() error {
			outcomes[i] = outcome{record: record, err: d.Work(gctx, record)}
			return nil
		})
	}
	// errgroup's own ctx cancellation is unused: per-record errors are
	// absorbed into outcomes, not propagated as group failures, so every
	// candidate in the batch always gets a transition attempt.
	_ = g.Wait()

	for _, o := range outcomes {
		if o.err == nil {
			moved, err := d.MarkSuccess(ctx, o.record)
			if err != nil {
				return err
			}
			if !moved {
				d.Log.Info("record advanced concurrently, skipping", "identifier", o.record.Identifier)
				continue
			}
			result.Succeeded++
			continue
		}

		result.Failed++
		msg := truncateForStorage(o.err.Error())
		if _, err := d.MarkFailure(ctx, o.record, msg); err != nil {
			d.Log.Error("failed to record failure transition", "identifier", o.record.Identifier, "error", err)
		}
	}

	return nil
}
