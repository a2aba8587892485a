// Package oaiclient implements the OAI-PMH collaborator contract the
// record-lifecycle engine depends on (§6): identify, list_identifiers,
// and get_record, each bound by a caller-supplied timeout.
package oaiclient

import (
	"context"

	"github.com/oai-harvest/harvester/internal/domain"
)

// Client is the collaborator interface the harvester phases consume.
// Implemented here over HTTP/XML, and satisfiable by a fake in tests.
type Client interface {
	// Identify probes repository liveness (§6). It returns only an error;
	// the repository metadata itself is not part of the core's contract.
	Identify(ctx context.Context) error

	// ListIdentifiers returns a page iterator over every header in the
	// given metadata format, starting from the beginning (§6). The
	// returned PageIterator must be closed.
	ListIdentifiers(ctx context.Context, metadataPrefix string) (PageIterator, error)

	// GetRecord fetches one record's metadata payload (§6).
	GetRecord(ctx context.Context, identifier, metadataPrefix string) (domain.GetRecordResponse, error)
}

// PageIterator lazily yields ListIdentifiers pages (§6: "lazy sequence of
// pages"). Next returns (page, true, nil) while pages remain, or
// (zero, false, nil) once exhausted. A non-nil error aborts the sequence.
type PageIterator interface {
	Next(ctx context.Context) (domain.ListIdentifiersPage, bool, error)
	Close() error
}
