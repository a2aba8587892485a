package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oai-harvest/harvester/internal/domain"
)

func TestFingerprint_DeterministicForSameIdentity(t *testing.T) {
	a := domain.Fingerprint("https://example.edu/oai", "oai_ead", "oai:example.edu:1")
	b := domain.Fingerprint("https://example.edu/oai", "oai_ead", "oai:example.edu:1")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "sha256 hex digest is 64 characters")
}

func TestFingerprint_DiffersAcrossIdentityFields(t *testing.T) {
	base := domain.Fingerprint("https://example.edu/oai", "oai_ead", "oai:example.edu:1")

	cases := []string{
		domain.Fingerprint("https://other.edu/oai", "oai_ead", "oai:example.edu:1"),
		domain.Fingerprint("https://example.edu/oai", "oai_dc", "oai:example.edu:1"),
		domain.Fingerprint("https://example.edu/oai", "oai_ead", "oai:example.edu:2"),
	}
	for _, c := range cases {
		assert.NotEqual(t, base, c)
	}
}

func TestFingerprint_NulJoinPreventsFieldConfusion(t *testing.T) {
	// "ab" + "c" must not collide with "a" + "bc" once NUL-joined.
	a := domain.Fingerprint("ab", "c", "id")
	b := domain.Fingerprint("a", "bc", "id")
	assert.NotEqual(t, a, b)
}

func TestStoragePath_ShardsByFingerprintPrefix(t *testing.T) {
	fp := domain.Fingerprint("https://example.edu/oai", "oai_ead", "oai:example.edu:1")
	path := domain.StoragePath(fp)
	assert.Equal(t, fp[0:2]+"/"+fp[2:4]+"/"+fp+".xml", path)
}

func TestRecordRef_PathMatchesStoragePath(t *testing.T) {
	ref := domain.RecordRef{Fingerprint: domain.Fingerprint("e", "p", "i")}
	assert.Equal(t, domain.StoragePath(ref.Fingerprint), ref.Path())
}
