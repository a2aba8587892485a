package store

import (
	"context"
	"fmt"

	"github.com/oai-harvest/harvester/internal/domain"
)

// refRow is the slim projection every selection query returns: just enough
// to identify and operate on a record without its metadata payload.
type refRow struct {
	Endpoint       string `db:"endpoint"`
	MetadataPrefix string `db:"metadata_prefix"`
	Identifier     string `db:"identifier"`
	Fingerprint    string `db:"fingerprint"`
	IndexAttempts  int    `db:"index_attempts"`
}

func (r refRow) toRef() domain.RecordRef {
	return domain.RecordRef{
		Endpoint:       r.Endpoint,
		MetadataPrefix: r.MetadataPrefix,
		Identifier:     r.Identifier,
		Fingerprint:    r.Fingerprint,
		IndexAttempts:  r.IndexAttempts,
	}
}

// FailedFilter narrows a failed-record selection query to a subset worth
// retrying: records whose stored index_message matches (substring) and
// whose index_attempts has not yet reached MaxAttempts. A zero value
// selects every failed record in the repository.
type FailedFilter struct {
	MessageContains string
	MaxAttempts     int
}

// PendingDownload returns up to BatchSize records with status=pending,
// ordered by identifier, strictly after afterIdentifier (§4.2, keyset
// pagination).
func (s *Store) PendingDownload(ctx context.Context, endpoint, metadataPrefix, afterIdentifier string) ([]domain.RecordRef, error) {
	const q = `
		SELECT endpoint, metadata_prefix, identifier, fingerprint, index_attempts
		FROM records
		WHERE endpoint = $1 AND metadata_prefix = $2 AND status = 'pending' AND identifier > $3
		ORDER BY identifier
		LIMIT $4`
	return s.selectRefs(ctx, q, endpoint, metadataPrefix, afterIdentifier, BatchSize)
}

// PendingMetadata returns up to BatchSize records with status=available,
// i.e. downloaded but not yet parsed into structured metadata.
func (s *Store) PendingMetadata(ctx context.Context, endpoint, metadataPrefix, afterIdentifier string) ([]domain.RecordRef, error) {
	const q = `
		SELECT endpoint, metadata_prefix, identifier, fingerprint, index_attempts
		FROM records
		WHERE endpoint = $1 AND metadata_prefix = $2 AND status = 'available' AND identifier > $3
		ORDER BY identifier
		LIMIT $4`
	return s.selectRefs(ctx, q, endpoint, metadataPrefix, afterIdentifier, BatchSize)
}

// PendingIndex implements fetch_pending_records_for_indexing (§4.2): rows
// parsed and not yet touched by the index phase, scoped to the configured
// OAI repository.
func (s *Store) PendingIndex(ctx context.Context, endpoint, metadataPrefix, oaiRepository, afterIdentifier string) ([]domain.RecordRef, error) {
	const q = `
		SELECT endpoint, metadata_prefix, identifier, fingerprint, index_attempts
		FROM records
		WHERE endpoint = $1 AND metadata_prefix = $2
		  AND status = 'parsed' AND index_status = 'pending'
		  AND metadata -> 'repository' ? $3
		  AND identifier > $4
		ORDER BY identifier
		LIMIT $5`
	return s.selectRefs(ctx, q, endpoint, metadataPrefix, oaiRepository, afterIdentifier, BatchSize)
}

// FailedIndex implements fetch_failed_records_for_indexing (§4.2): rows
// whose prior index attempt failed, narrowed by filter.
func (s *Store) FailedIndex(ctx context.Context, endpoint, metadataPrefix, oaiRepository, afterIdentifier string, filter FailedFilter) ([]domain.RecordRef, error) {
	q := `
		SELECT endpoint, metadata_prefix, identifier, fingerprint, index_attempts
		FROM records
		WHERE endpoint = $1 AND metadata_prefix = $2
		  AND status = 'parsed' AND index_status = 'index_failed'
		  AND metadata -> 'repository' ? $3
		  AND identifier > $4`
	args := []any{endpoint, metadataPrefix, oaiRepository, afterIdentifier}
	q, args = appendFailedFilter(q, args, filter)
	q += fmt.Sprintf(" ORDER BY identifier LIMIT $%d", len(args)+1)
	args = append(args, BatchSize)
	return s.selectRefs(ctx, q, args...)
}

// PendingPurge implements fetch_pending_records_for_purging (§4.2):
// tombstoned rows whose index entry still needs to be removed.
func (s *Store) PendingPurge(ctx context.Context, endpoint, metadataPrefix, oaiRepository, afterIdentifier string) ([]domain.RecordRef, error) {
	const q = `
		SELECT endpoint, metadata_prefix, identifier, fingerprint, index_attempts
		FROM records
		WHERE endpoint = $1 AND metadata_prefix = $2
		  AND status = 'deleted' AND index_status = 'pending'
		  AND metadata -> 'repository' ? $3
		  AND identifier > $4
		ORDER BY identifier
		LIMIT $5`
	return s.selectRefs(ctx, q, endpoint, metadataPrefix, oaiRepository, afterIdentifier, BatchSize)
}

// FailedPurge implements fetch_failed_records_for_purging (§4.2):
// tombstoned rows whose prior purge attempt failed, narrowed by filter.
func (s *Store) FailedPurge(ctx context.Context, endpoint, metadataPrefix, oaiRepository, afterIdentifier string, filter FailedFilter) ([]domain.RecordRef, error) {
	q := `
		SELECT endpoint, metadata_prefix, identifier, fingerprint, index_attempts
		FROM records
		WHERE endpoint = $1 AND metadata_prefix = $2
		  AND status = 'deleted' AND index_status = 'purge_failed'
		  AND metadata -> 'repository' ? $3
		  AND identifier > $4`
	args := []any{endpoint, metadataPrefix, oaiRepository, afterIdentifier}
	q, args = appendFailedFilter(q, args, filter)
	q += fmt.Sprintf(" ORDER BY identifier LIMIT $%d", len(args)+1)
	args = append(args, BatchSize)
	return s.selectRefs(ctx, q, args...)
}

// RecordsByStatus implements fetch_records_by_status (§4.2): a keyset page
// of records in any given harvest status. The harvester phases do not call
// it; they select through PendingDownload and PendingMetadata.
func (s *Store) RecordsByStatus(ctx context.Context, endpoint, metadataPrefix string, status domain.HarvestStatus, afterIdentifier string) ([]domain.RecordRef, error) {
	const q = `
		SELECT endpoint, metadata_prefix, identifier, fingerprint, index_attempts
		FROM records
		WHERE endpoint = $1 AND metadata_prefix = $2 AND status = $3 AND identifier > $4
		ORDER BY identifier
		LIMIT $5`
	return s.selectRefs(ctx, q, endpoint, metadataPrefix, string(status), afterIdentifier, BatchSize)
}

func appendFailedFilter(q string, args []any, filter FailedFilter) (string, []any) {
	if filter.MessageContains != "" {
		args = append(args, "%"+filter.MessageContains+"%")
		q += fmt.Sprintf(" AND index_message LIKE $%d", len(args))
	}
	if filter.MaxAttempts > 0 {
		args = append(args, filter.MaxAttempts)
		q += fmt.Sprintf(" AND index_attempts < $%d", len(args))
	}
	return q, args
}

func (s *Store) selectRefs(ctx context.Context, query string, args ...any) ([]domain.RecordRef, error) {
	var rows []refRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select record batch: %w", err)
	}
	refs := make([]domain.RecordRef, 0, len(rows))
	for _, r := range rows {
		refs = append(refs, r.toRef())
	}
	return refs, nil
}
