package store

import (
	"context"

	"github.com/oai-harvest/harvester/internal/domain"
)

// ref identifies the row a transition applies to. Failure transitions take
// an already-truncated message (§7's truncate_middle(200, 200) rule is
// applied once, by the caller driving the worker loop, not here).
type ref = domain.RecordRef

// DownloadSucceeded moves a record pending -> available once its XML has
// been written to disk (§4.1). Returns false if the row was no longer in
// the pending state (a concurrent worker already moved it).
func (s *Store) DownloadSucceeded(ctx context.Context, r ref) (bool, error) {
	const q = `
		UPDATE records
		SET status = 'available', message = '', last_checked_at = now()
		WHERE endpoint = $1 AND metadata_prefix = $2 AND identifier = $3 AND status = 'pending'`
	res, err := s.db.ExecContext(ctx, q, r.Endpoint, r.MetadataPrefix, r.Identifier)
	return transitioned(res, err)
}

// DownloadFailed moves a record pending -> failed, recording the
// truncated error message.
func (s *Store) DownloadFailed(ctx context.Context, r ref, message string) (bool, error) {
	const q = `
		UPDATE records
		SET status = 'failed', message = $4, last_checked_at = now()
		WHERE endpoint = $1 AND metadata_prefix = $2 AND identifier = $3 AND status = 'pending'`
	res, err := s.db.ExecContext(ctx, q, r.Endpoint, r.MetadataPrefix, r.Identifier, message)
	return transitioned(res, err)
}

// MetadataSucceeded moves a record available -> parsed, persisting the
// extracted metadata fields. It also resets the index lifecycle back to
// pending (invariant I6): re-extracted metadata must be re-indexed.
func (s *Store) MetadataSucceeded(ctx context.Context, r ref, metadata []byte) (bool, error) {
	const q = `
		UPDATE records
		SET status = 'parsed', message = '', metadata = $4,
		    index_status = 'pending', index_message = '', index_attempts = 0,
		    indexed_at = NULL, purged_at = NULL,
		    last_checked_at = now()
		WHERE endpoint = $1 AND metadata_prefix = $2 AND identifier = $3 AND status = 'available'`
	res, err := s.db.ExecContext(ctx, q, r.Endpoint, r.MetadataPrefix, r.Identifier, metadata)
	return transitioned(res, err)
}

// MetadataFailed moves a record available -> failed.
func (s *Store) MetadataFailed(ctx context.Context, r ref, message string) (bool, error) {
	const q = `
		UPDATE records
		SET status = 'failed', message = $4, last_checked_at = now()
		WHERE endpoint = $1 AND metadata_prefix = $2 AND identifier = $3 AND status = 'available'`
	res, err := s.db.ExecContext(ctx, q, r.Endpoint, r.MetadataPrefix, r.Identifier, message)
	return transitioned(res, err)
}

// IndexSucceeded moves index_status pending|index_failed -> indexed, for a
// parsed record.
func (s *Store) IndexSucceeded(ctx context.Context, r ref) (bool, error) {
	const q = `
		UPDATE records
		SET index_status = 'indexed', index_message = '', index_attempts = 0,
		    indexed_at = now(), index_last_checked_at = now()
		WHERE endpoint = $1 AND metadata_prefix = $2 AND identifier = $3
		  AND status = 'parsed' AND index_status IN ('pending', 'index_failed')`
	res, err := s.db.ExecContext(ctx, q, r.Endpoint, r.MetadataPrefix, r.Identifier)
	return transitioned(res, err)
}

// IndexFailed moves index_status pending|index_failed -> index_failed,
// incrementing the attempt counter.
func (s *Store) IndexFailed(ctx context.Context, r ref, message string) (bool, error) {
	const q = `
		UPDATE records
		SET index_status = 'index_failed', index_message = $4, index_attempts = index_attempts + 1,
		    index_last_checked_at = now()
		WHERE endpoint = $1 AND metadata_prefix = $2 AND identifier = $3
		  AND status = 'parsed' AND index_status IN ('pending', 'index_failed')`
	res, err := s.db.ExecContext(ctx, q, r.Endpoint, r.MetadataPrefix, r.Identifier, message)
	return transitioned(res, err)
}

// PurgeSucceeded moves index_status pending|purge_failed -> purged, for a
// tombstoned record whose search-server document has been removed.
func (s *Store) PurgeSucceeded(ctx context.Context, r ref) (bool, error) {
	const q = `
		UPDATE records
		SET index_status = 'purged', index_message = '', index_attempts = 0,
		    purged_at = now(), index_last_checked_at = now()
		WHERE endpoint = $1 AND metadata_prefix = $2 AND identifier = $3
		  AND status = 'deleted' AND index_status IN ('pending', 'purge_failed')`
	res, err := s.db.ExecContext(ctx, q, r.Endpoint, r.MetadataPrefix, r.Identifier)
	return transitioned(res, err)
}

// PurgeFailed moves index_status pending|purge_failed -> purge_failed.
func (s *Store) PurgeFailed(ctx context.Context, r ref, message string) (bool, error) {
	const q = `
		UPDATE records
		SET index_status = 'purge_failed', index_message = $4, index_attempts = index_attempts + 1,
		    index_last_checked_at = now()
		WHERE endpoint = $1 AND metadata_prefix = $2 AND identifier = $3
		  AND status = 'deleted' AND index_status IN ('pending', 'purge_failed')`
	res, err := s.db.ExecContext(ctx, q, r.Endpoint, r.MetadataPrefix, r.Identifier, message)
	return transitioned(res, err)
}

// RequeueRepository resets the index lifecycle back to pending for every
// record matching endpoint+prefix+repository with status in (parsed,
// deleted), so both the index and purge phases re-drive the whole cohort
// (§4.1 Requeue/reindex). Returns the number of rows reset.
func (s *Store) RequeueRepository(ctx context.Context, endpoint, metadataPrefix, oaiRepository string) (int64, error) {
	const q = `
		UPDATE records
		SET index_status = 'pending', index_message = '', index_attempts = 0,
		    indexed_at = NULL, purged_at = NULL, index_last_checked_at = now()
		WHERE endpoint = $1 AND metadata_prefix = $2
		  AND metadata -> 'repository' ? $3
		  AND status IN ('parsed', 'deleted')`
	res, err := s.db.ExecContext(ctx, q, endpoint, metadataPrefix, oaiRepository)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RetryHarvestAll resets every failed record for endpoint+prefix back to
// pending so the download phase retries them on the next sweep (§4.1
// Retry-harvest). Returns the number of rows reset.
func (s *Store) RetryHarvestAll(ctx context.Context, endpoint, metadataPrefix string) (int64, error) {
	const q = `
		UPDATE records
		SET status = 'pending', message = ''
		WHERE endpoint = $1 AND metadata_prefix = $2 AND status = 'failed'`
	res, err := s.db.ExecContext(ctx, q, endpoint, metadataPrefix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
