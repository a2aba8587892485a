package store_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oai-harvest/harvester/internal/domain"
	"github.com/oai-harvest/harvester/internal/store"
)

func TestImportBatch_EmptyHeadersNoOp(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	result, err := s.ImportBatch(context.Background(), "https://example.edu/oai", "oai_ead", nil)
	require.NoError(t, err)
	assert.Equal(t, store.ImportResult{}, result)
	expectationsMet(t, mock)
}

func TestImportBatch_CountsActiveAndDeleted(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"inserted", "status"}).
		AddRow(true, "pending").
		AddRow(false, "deleted").
		AddRow(false, "pending")

	mock.ExpectQuery(`(?s)INSERT INTO records.*message\s*=\s*''.*indexed_at\s*=\s*CASE WHEN EXCLUDED\.status = 'deleted' THEN NULL ELSE records\.indexed_at END.*purged_at\s*=\s*CASE WHEN EXCLUDED\.status = 'deleted' THEN NULL ELSE records\.purged_at END`).
		WithArgs("https://example.edu/oai", "oai_ead", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	headers := []domain.OaiHeader{
		{Identifier: "oai:example.edu:1", Datestamp: "2026-01-01"},
		{Identifier: "oai:example.edu:2", Datestamp: "2026-01-02", Status: "deleted"},
		{Identifier: "oai:example.edu:3", Datestamp: "2026-01-03"},
	}

	result, err := s.ImportBatch(context.Background(), "https://example.edu/oai", "oai_ead", headers)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Deleted)
	expectationsMet(t, mock)
}

func TestImportBatch_PropagatesQueryError(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO records").
		WithArgs("https://example.edu/oai", "oai_ead", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(assert.AnError)

	headers := []domain.OaiHeader{{Identifier: "oai:example.edu:1", Datestamp: "2026-01-01"}}

	_, err := s.ImportBatch(context.Background(), "https://example.edu/oai", "oai_ead", headers)
	assert.Error(t, err)
	expectationsMet(t, mock)
}
