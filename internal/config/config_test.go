package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oai-harvest/harvester/internal/config"
)

func TestLoadConfig_OverlaysViperValuesOntoDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("oai.endpoint", "https://example.edu/oai")
	viper.Set("oai.metadata_prefix", "oai_ead")
	viper.Set("oai.retries", 5)
	viper.Set("indexer.data_dir", "/data")
	viper.Set("database.host", "db.internal")
	viper.Set("database.dbname", "harvester")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://example.edu/oai", cfg.Oai.Endpoint)
	assert.Equal(t, "oai_ead", cfg.Oai.MetadataPrefix)
	assert.Equal(t, 5, cfg.Oai.Retries)
	assert.Equal(t, "/data", cfg.Indexer.DataDir)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoadConfig_FallsBackToSubsystemDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Oai.Timeout)
	assert.Equal(t, 3, cfg.Oai.Retries)
}

func TestValidateHarvest_RequiresEndpointPrefixAndDataDir(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Error(t, cfg.ValidateHarvest())

	cfg.Oai.Endpoint = "https://example.edu/oai"
	cfg.Oai.MetadataPrefix = "oai_ead"
	cfg.Indexer.DataDir = "/data"
	assert.NoError(t, cfg.ValidateHarvest())
}

func TestValidateIndex_RequiresIndexerSettingsOnTopOfHarvest(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.Oai.Endpoint = "https://example.edu/oai"
	cfg.Oai.MetadataPrefix = "oai_ead"
	cfg.Indexer.DataDir = "/data"

	assert.Error(t, cfg.ValidateIndex(), "missing repository/solr settings")

	cfg.Indexer.OaiRepository = "mss"
	cfg.Indexer.Repository = "mss"
	cfg.Indexer.SolrURL = "http://solr:8983/solr/core"
	cfg.Indexer.TrajectConfiguration = "/etc/traject/config.rb"
	assert.NoError(t, cfg.ValidateIndex())
}

func TestValidateDatabase_RequiresHostAndDBName(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Error(t, cfg.ValidateDatabase())

	cfg.Database.Host = "db.internal"
	cfg.Database.DBName = "harvester"
	assert.NoError(t, cfg.ValidateDatabase())
}
