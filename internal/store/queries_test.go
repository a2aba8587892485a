package store_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oai-harvest/harvester/internal/store"
)

var refColumns = []string{"endpoint", "metadata_prefix", "identifier", "fingerprint", "index_attempts"}

func TestPendingDownload_ReturnsPage(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	rows := sqlmock.NewRows(refColumns).
		AddRow("https://example.edu/oai", "oai_ead", "oai:example.edu:1", "fp1", 0).
		AddRow("https://example.edu/oai", "oai_ead", "oai:example.edu:2", "fp2", 0)

	mock.ExpectQuery("SELECT (.+) FROM records").
		WithArgs("https://example.edu/oai", "oai_ead", "", store.BatchSize).
		WillReturnRows(rows)

	refs, err := s.PendingDownload(context.Background(), "https://example.edu/oai", "oai_ead", "")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "oai:example.edu:1", refs[0].Identifier)
	assert.Equal(t, "fp2", refs[1].Fingerprint)
	expectationsMet(t, mock)
}

func TestPendingDownload_EmptyPageEndsPagination(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM records").
		WithArgs("https://example.edu/oai", "oai_ead", "oai:example.edu:99", store.BatchSize).
		WillReturnRows(sqlmock.NewRows(refColumns))

	refs, err := s.PendingDownload(context.Background(), "https://example.edu/oai", "oai_ead", "oai:example.edu:99")
	require.NoError(t, err)
	assert.Empty(t, refs)
	expectationsMet(t, mock)
}

func TestPendingIndex_ScopedToRepository(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	rows := sqlmock.NewRows(refColumns).
		AddRow("https://example.edu/oai", "oai_ead", "oai:example.edu:1", "fp1", 0)

	mock.ExpectQuery("SELECT (.+) FROM records").
		WithArgs("https://example.edu/oai", "oai_ead", "mss", "", store.BatchSize).
		WillReturnRows(rows)

	refs, err := s.PendingIndex(context.Background(), "https://example.edu/oai", "oai_ead", "mss", "")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	expectationsMet(t, mock)
}

func TestFailedIndex_AppliesMessageAndAttemptFilter(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM records").
		WithArgs("https://example.edu/oai", "oai_ead", "mss", "", "%timeout%", 3, store.BatchSize).
		WillReturnRows(sqlmock.NewRows(refColumns))

	filter := store.FailedFilter{MessageContains: "timeout", MaxAttempts: 3}
	refs, err := s.FailedIndex(context.Background(), "https://example.edu/oai", "oai_ead", "mss", "", filter)
	require.NoError(t, err)
	assert.Empty(t, refs)
	expectationsMet(t, mock)
}

func TestFailedPurge_NoFilterSelectsEverything(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM records").
		WithArgs("https://example.edu/oai", "oai_ead", "mss", "", store.BatchSize).
		WillReturnRows(sqlmock.NewRows(refColumns))

	refs, err := s.FailedPurge(context.Background(), "https://example.edu/oai", "oai_ead", "mss", "", store.FailedFilter{})
	require.NoError(t, err)
	assert.Empty(t, refs)
	expectationsMet(t, mock)
}

func TestRecordsByStatus_FiltersByStatus(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	rows := sqlmock.NewRows(refColumns).
		AddRow("https://example.edu/oai", "oai_ead", "oai:example.edu:9", "fp9", 2)

	mock.ExpectQuery("SELECT (.+) FROM records").
		WithArgs("https://example.edu/oai", "oai_ead", "failed", "", store.BatchSize).
		WillReturnRows(rows)

	refs, err := s.RecordsByStatus(context.Background(), "https://example.edu/oai", "oai_ead", "failed", "")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, 2, refs[0].IndexAttempts)
	expectationsMet(t, mock)
}
