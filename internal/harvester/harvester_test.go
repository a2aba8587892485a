package harvester_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oai-harvest/harvester/internal/domain"
	"github.com/oai-harvest/harvester/internal/harvester"
	"github.com/oai-harvest/harvester/internal/logger"
	"github.com/oai-harvest/harvester/internal/oaiclient"
	"github.com/oai-harvest/harvester/internal/store"
	"github.com/oai-harvest/harvester/internal/xmlrules"
)

var harvestRefColumns = []string{"endpoint", "metadata_prefix", "identifier", "fingerprint", "index_attempts"}

type fakePageIterator struct {
	pages []domain.ListIdentifiersPage
	i     int
}

func (p *fakePageIterator) Next(ctx context.Context) (domain.ListIdentifiersPage, bool, error) {
	if p.i >= len(p.pages) {
		return domain.ListIdentifiersPage{}, false, nil
	}
	page := p.pages[p.i]
	p.i++
	return page, true, nil
}

func (p *fakePageIterator) Close() error { return nil }

type fakeOAIClient struct {
	identifyErr error
	pages       []domain.ListIdentifiersPage
	payloads    map[string]string
}

func (c *fakeOAIClient) Identify(ctx context.Context) error { return c.identifyErr }

func (c *fakeOAIClient) ListIdentifiers(ctx context.Context, metadataPrefix string) (oaiclient.PageIterator, error) {
	return &fakePageIterator{pages: c.pages}, nil
}

func (c *fakeOAIClient) GetRecord(ctx context.Context, identifier, metadataPrefix string) (domain.GetRecordResponse, error) {
	body, ok := c.payloads[identifier]
	if !ok {
		return domain.GetRecordResponse{}, nil
	}
	return domain.GetRecordResponse{Payload: &domain.GetRecordPayload{Metadata: body}}, nil
}

func newMockStore(t *testing.T) (*store.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")
	return store.New(db), mock, func() { mockDB.Close() }
}

func TestRunImport_UpsertsHeadersAcrossPages(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	oai := &fakeOAIClient{
		pages: []domain.ListIdentifiersPage{
			{Headers: []domain.OaiHeader{{Identifier: "oai:example.edu:1", Datestamp: "2026-01-01"}}},
			{Headers: []domain.OaiHeader{{Identifier: "oai:example.edu:2", Datestamp: "2026-01-02", Status: "deleted"}}},
		},
	}

	mock.ExpectQuery("INSERT INTO records").
		WithArgs("https://example.edu/oai", "oai_ead", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"inserted", "status"}).
			AddRow(true, "pending").
			AddRow(true, "deleted"))

	h := &harvester.Harvester{
		Config: harvester.Config{Endpoint: "https://example.edu/oai", MetadataPrefix: "oai_ead", OaiTimeout: time.Second},
		Store:  s,
		OAI:    oai,
		Log:    logger.NewNoOp(),
	}

	result, err := h.RunImport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Deleted)
}

func TestRunImport_IdentifyFailureAbortsPhase(t *testing.T) {
	s, _, cleanup := newMockStore(t)
	defer cleanup()

	oai := &fakeOAIClient{identifyErr: assert.AnError}
	h := &harvester.Harvester{
		Config: harvester.Config{Endpoint: "https://example.edu/oai", MetadataPrefix: "oai_ead", OaiTimeout: time.Second},
		Store:  s,
		OAI:    oai,
		Log:    logger.NewNoOp(),
	}

	_, err := h.RunImport(context.Background())
	assert.Error(t, err)
}

func TestRunDownload_WritesPayloadToDisk(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	dataDir := t.TempDir()
	fp := domain.Fingerprint("https://example.edu/oai", "oai_ead", "oai:example.edu:1")

	mock.ExpectQuery("SELECT (.+) FROM records").
		WithArgs("https://example.edu/oai", "oai_ead", "", store.BatchSize).
		WillReturnRows(sqlmock.NewRows(harvestRefColumns).
			AddRow("https://example.edu/oai", "oai_ead", "oai:example.edu:1", fp, 0))
	mock.ExpectExec("UPDATE records").
		WithArgs("https://example.edu/oai", "oai_ead", "oai:example.edu:1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	oai := &fakeOAIClient{payloads: map[string]string{
		"oai:example.edu:1": "<ead><unittitle>A Finding Aid</unittitle></ead>",
	}}

	h := &harvester.Harvester{
		Config: harvester.Config{Endpoint: "https://example.edu/oai", MetadataPrefix: "oai_ead", DataDir: dataDir, OaiTimeout: time.Second},
		Store:  s,
		OAI:    oai,
		Log:    logger.NewNoOp(),
	}

	result, err := h.RunDownload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 0, result.Failed)

	written, err := os.ReadFile(filepath.Join(dataDir, domain.StoragePath(fp)))
	require.NoError(t, err)
	assert.Contains(t, string(written), "A Finding Aid")
}

func TestRunDownload_MissingPayloadIsFailure(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	fp := domain.Fingerprint("https://example.edu/oai", "oai_ead", "oai:example.edu:missing")
	mock.ExpectQuery("SELECT (.+) FROM records").
		WithArgs("https://example.edu/oai", "oai_ead", "", store.BatchSize).
		WillReturnRows(sqlmock.NewRows(harvestRefColumns).
			AddRow("https://example.edu/oai", "oai_ead", "oai:example.edu:missing", fp, 0))
	mock.ExpectExec("UPDATE records").
		WithArgs("https://example.edu/oai", "oai_ead", "oai:example.edu:missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := &harvester.Harvester{
		Config: harvester.Config{Endpoint: "https://example.edu/oai", MetadataPrefix: "oai_ead", DataDir: t.TempDir(), OaiTimeout: time.Second},
		Store:  s,
		OAI:    &fakeOAIClient{},
		Log:    logger.NewNoOp(),
	}

	result, err := h.RunDownload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
}

func TestRunMetadata_ExtractsFieldsAndPersists(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	dataDir := t.TempDir()
	fp := domain.Fingerprint("https://example.edu/oai", "oai_ead", "oai:example.edu:1")
	path := filepath.Join(dataDir, domain.StoragePath(fp))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`<ead><unittitle>A Finding Aid</unittitle><unitid>MS-1</unitid><repository><corpname>Example Archive</corpname></repository></ead>`), 0o644))

	mock.ExpectQuery("SELECT (.+) FROM records").
		WithArgs("https://example.edu/oai", "oai_ead", "", store.BatchSize).
		WillReturnRows(sqlmock.NewRows(harvestRefColumns).
			AddRow("https://example.edu/oai", "oai_ead", "oai:example.edu:1", fp, 0))
	mock.ExpectExec("UPDATE records").
		WithArgs("https://example.edu/oai", "oai_ead", "oai:example.edu:1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ruleSet, err := xmlrules.RuleSetFor("oai_ead")
	require.NoError(t, err)

	h := &harvester.Harvester{
		Config:  harvester.Config{Endpoint: "https://example.edu/oai", MetadataPrefix: "oai_ead", DataDir: dataDir, OaiTimeout: time.Second},
		Store:   s,
		RuleSet: ruleSet,
		Log:     logger.NewNoOp(),
	}

	result, err := h.RunMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
}
