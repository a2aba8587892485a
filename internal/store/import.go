package store

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/oai-harvest/harvester/internal/domain"
)

// ImportResult summarizes one import batch's effect on the record store
// (§4.4.1): processed is every header considered, imported is rows inserted
// or updated into an active (non-deleted) status, deleted is rows inserted or
// updated as deleted. Rows the upsert skips are counted in neither.
type ImportResult struct {
	Processed int
	Imported  int
	Deleted   int
}

// ImportBatch upserts a page of OAI-PMH headers into the record store in a
// single statement (§4.4.1, §7 invariant I5/I7). Sticky-failed semantics:
// a row whose current status is 'failed' is left untouched, because a
// harvester failure is not overwritten by the next list_identifiers sweep
// seeing the same datestamp again. A row transitioning to 'deleted' has its
// index lifecycle atomically reset to pending (invariant I6) so the purge
// phase will pick it up.
func (s *Store) ImportBatch(ctx context.Context, endpoint, metadataPrefix string, headers []domain.OaiHeader) (ImportResult, error) {
	if len(headers) == 0 {
		return ImportResult{}, nil
	}

	identifiers := make([]string, len(headers))
	datestamps := make([]string, len(headers))
	fingerprints := make([]string, len(headers))
	statuses := make([]string, len(headers))

	for i, h := range headers {
		identifiers[i] = h.Identifier
		datestamps[i] = h.Datestamp
		fingerprints[i] = domain.Fingerprint(endpoint, metadataPrefix, h.Identifier)
		statuses[i] = string(h.HarvestStatus())
	}

	const q = `
		INSERT INTO records (endpoint, metadata_prefix, identifier, datestamp, fingerprint, status)
		SELECT $1, $2, u.identifier, u.datestamp, u.fingerprint, u.status
		FROM UNNEST($3::text[], $4::text[], $5::text[], $6::text[]) AS u(identifier, datestamp, fingerprint, status)
		ON CONFLICT (endpoint, metadata_prefix, identifier) DO UPDATE
		SET datestamp       = EXCLUDED.datestamp,
		    fingerprint     = EXCLUDED.fingerprint,
		    status          = EXCLUDED.status,
		    message         = '',
		    index_status    = CASE WHEN EXCLUDED.status = 'deleted' THEN 'pending' ELSE records.index_status END,
		    index_message   = CASE WHEN EXCLUDED.status = 'deleted' THEN '' ELSE records.index_message END,
		    index_attempts  = CASE WHEN EXCLUDED.status = 'deleted' THEN 0 ELSE records.index_attempts END,
		    indexed_at      = CASE WHEN EXCLUDED.status = 'deleted' THEN NULL ELSE records.indexed_at END,
		    purged_at       = CASE WHEN EXCLUDED.status = 'deleted' THEN NULL ELSE records.purged_at END,
		    last_checked_at = now(),
		    version         = records.version + 1
		WHERE records.status != 'failed' AND records.datestamp != EXCLUDED.datestamp
		RETURNING (xmax = 0) AS inserted, status`

	rows, err := s.db.QueryContext(ctx, q,
		endpoint, metadataPrefix,
		pq.Array(identifiers), pq.Array(datestamps), pq.Array(fingerprints), pq.Array(statuses),
	)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import record batch: %w", err)
	}
	defer rows.Close()

	result := ImportResult{Processed: len(headers)}
	for rows.Next() {
		var inserted bool
		var status string
		if err := rows.Scan(&inserted, &status); err != nil {
			return ImportResult{}, fmt.Errorf("scan import result: %w", err)
		}
		if status == string(domain.StatusDeleted) {
			result.Deleted++
		} else {
			result.Imported++
		}
	}
	if err := rows.Err(); err != nil {
		return ImportResult{}, fmt.Errorf("iterate import results: %w", err)
	}

	return result, nil
}
