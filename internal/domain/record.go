// Package domain holds the types shared by the record store, the worker
// loops, and the harvester/indexer phases: the Record itself, its two
// lifecycle state machines, and the fingerprint/path derivation rules.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"time"
)

// HarvestStatus is the lifecycle state driven by the harvester phases.
type HarvestStatus string

const (
	StatusPending HarvestStatus = "pending"
	StatusAvailable HarvestStatus = "available"
	StatusFailed  HarvestStatus = "failed"
	StatusParsed  HarvestStatus = "parsed"
	StatusDeleted HarvestStatus = "deleted"
)

// IndexStatus is the lifecycle state driven by the indexer phases.
type IndexStatus string

const (
	IndexPending      IndexStatus = "pending"
	IndexIndexed      IndexStatus = "indexed"
	IndexFailed       IndexStatus = "index_failed"
	IndexPurged       IndexStatus = "purged"
	IndexPurgeFailed  IndexStatus = "purge_failed"
)

// Identity is the triple that uniquely identifies a Record (invariant I1).
type Identity struct {
	Endpoint       string
	MetadataPrefix string
	Identifier     string
}

// Fingerprint derives the deterministic, stable document id and storage
// path prefix for a Record's identity (invariant I2). It is a SHA-256 hex
// digest of the canonically-joined identity triple.
func Fingerprint(endpoint, metadataPrefix, identifier string) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write([]byte(metadataPrefix))
	h.Write([]byte{0})
	h.Write([]byte(identifier))
	return hex.EncodeToString(h.Sum(nil))
}

// StoragePath returns the on-disk path for a record's XML payload, relative
// to the configured data directory: fp[0:2]/fp[2:4]/fp.xml (§6).
func StoragePath(fingerprint string) string {
	return filepath.Join(fingerprint[0:2], fingerprint[2:4], fingerprint+".xml")
}

// Record is the sole persistent entity (§3).
type Record struct {
	Endpoint       string `db:"endpoint"`
	MetadataPrefix string `db:"metadata_prefix"`
	Identifier     string `db:"identifier"`
	Datestamp      string `db:"datestamp"`
	Fingerprint    string `db:"fingerprint"`

	Status  HarvestStatus `db:"status"`
	Message string        `db:"message"`
	Metadata []byte       `db:"metadata"`

	IndexStatus   IndexStatus `db:"index_status"`
	IndexMessage  string      `db:"index_message"`
	IndexAttempts int         `db:"index_attempts"`

	LastCheckedAt      time.Time  `db:"last_checked_at"`
	IndexLastCheckedAt *time.Time `db:"index_last_checked_at"`
	IndexedAt          *time.Time `db:"indexed_at"`
	PurgedAt           *time.Time `db:"purged_at"`

	Version int `db:"version"`
}

// RecordIdentity returns the Record's identity triple.
func (r *Record) RecordIdentity() Identity {
	return Identity{Endpoint: r.Endpoint, MetadataPrefix: r.MetadataPrefix, Identifier: r.Identifier}
}

// Path returns the on-disk XML path for this record.
func (r *Record) Path() string {
	return StoragePath(r.Fingerprint)
}

// RecordRef is the slim projection the worker loops and phases pass
// around: just enough to fetch, transition, and log a record without
// carrying its full metadata payload through every layer.
type RecordRef struct {
	Endpoint       string `db:"endpoint"`
	MetadataPrefix string `db:"metadata_prefix"`
	Identifier     string `db:"identifier"`
	Fingerprint    string `db:"fingerprint"`
	IndexAttempts  int    `db:"index_attempts"`
}

// Path returns the on-disk XML path for this record reference.
func (r RecordRef) Path() string {
	return StoragePath(r.Fingerprint)
}
