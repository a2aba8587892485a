package indexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oai-harvest/harvester/internal/config/indexer"
)

func TestNewConfig_PopulatesProductionSafeDefaults(t *testing.T) {
	cfg := indexer.NewConfig()

	assert.Equal(t, indexer.DefaultTrajectBinary, cfg.TrajectBinary)
	assert.Equal(t, indexer.DefaultSolrCommitWithinMs, cfg.SolrCommitWithinMs)
	assert.Equal(t, indexer.DefaultRecordTimeout, cfg.RecordTimeout)
	assert.Empty(t, cfg.DataDir)
	assert.Empty(t, cfg.SolrURL)
}
