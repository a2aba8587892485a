package store

import (
	"encoding/json"
	"time"

	"github.com/oai-harvest/harvester/internal/domain"
)

// recordRow mirrors the records table for full-row selects, converting to a
// domain.Record via toRecord. The phase queries do not scan into it; they
// select the slimmer refRow.
type recordRow struct {
	Endpoint       string    `db:"endpoint"`
	MetadataPrefix string    `db:"metadata_prefix"`
	Identifier     string    `db:"identifier"`
	Datestamp      string    `db:"datestamp"`
	Fingerprint    string    `db:"fingerprint"`
	Status         string    `db:"status"`
	Message        string    `db:"message"`
	Metadata       []byte    `db:"metadata"`
	IndexStatus    string    `db:"index_status"`
	IndexMessage   string    `db:"index_message"`
	IndexAttempts  int       `db:"index_attempts"`
	LastCheckedAt  time.Time `db:"last_checked_at"`
	Version        int       `db:"version"`
}

func (r recordRow) toRecord() *domain.Record {
	return &domain.Record{
		Endpoint:       r.Endpoint,
		MetadataPrefix: r.MetadataPrefix,
		Identifier:     r.Identifier,
		Datestamp:      r.Datestamp,
		Fingerprint:    r.Fingerprint,
		Status:         domain.HarvestStatus(r.Status),
		Message:        r.Message,
		Metadata:       r.Metadata,
		IndexStatus:    domain.IndexStatus(r.IndexStatus),
		IndexMessage:   r.IndexMessage,
		IndexAttempts:  r.IndexAttempts,
		LastCheckedAt:  r.LastCheckedAt,
		Version:        r.Version,
	}
}

// EncodeMetadata marshals extracted rule results into the JSON object shape
// the schema stores: {key: [values...]}.
func EncodeMetadata(fields map[string][]string) ([]byte, error) {
	if fields == nil {
		fields = map[string][]string{}
	}
	return json.Marshal(fields)
}
