// Package indexer implements the index and purge phases (§4.5): two
// worker-loop sweeps that drive the index-status lifecycle by calling out
// to an external search backend through the Backend capability interface.
package indexer

import (
	"context"

	"github.com/oai-harvest/harvester/internal/domain"
)

// Backend is the capability interface every concrete search backend
// implements (§9 "dispatch across indexer backends" design note): the
// worker loop is generic over this, favouring composition over any
// backend-specific inheritance.
type Backend interface {
	IndexRecord(ctx context.Context, record domain.RecordRef) error
	DeleteRecord(ctx context.Context, record domain.RecordRef) error
}

// RunMode selects which selection queries a phase uses (§4.5.1).
type RunMode int

const (
	// PendingOnly selects rows that have never been attempted, or were
	// reset by a requeue.
	PendingOnly RunMode = iota
	// FailedOnly selects rows whose prior attempt failed, narrowed by
	// Filter.
	FailedOnly
)

// RunOptions configures one index or purge sweep.
type RunOptions struct {
	Endpoint       string
	MetadataPrefix string
	OaiRepository  string
	Mode           RunMode
	Filter         FailedFilter
	Preview        bool
}

// FailedFilter narrows a failed-only selection (§4.5.1, §4.2).
type FailedFilter struct {
	MessageContains string
	MaxAttempts     int
}

// Outcome is the (indexed, purged, failed_index, failed_purge) aggregate
// the indexer returns after both phases run (§4.5.5).
type Outcome struct {
	Indexed     int
	Purged      int
	FailedIndex int
	FailedPurge int
}

// Failed reports whether either phase recorded a per-record failure,
// which the CLI surfaces as a non-zero exit (§4.5.5, §6.2).
func (o Outcome) Failed() bool {
	return o.FailedIndex > 0 || o.FailedPurge > 0
}
