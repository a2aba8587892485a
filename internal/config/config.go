// Package config aggregates the application's settings from Viper
// (config file, environment variables, and flags, in that precedence
// order) into the typed sub-configs each subsystem consumes.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/oai-harvest/harvester/internal/config/app"
	dbconfig "github.com/oai-harvest/harvester/internal/config/database"
	idxconfig "github.com/oai-harvest/harvester/internal/config/indexer"
	"github.com/oai-harvest/harvester/internal/config/logging"
	oaiconfig "github.com/oai-harvest/harvester/internal/config/oai"
)

// Interface defines the configuration surface the cmd layer depends on.
type Interface interface {
	GetAppConfig() *app.Config
	GetLogConfig() *logging.Config
	GetDatabaseConfig() *dbconfig.Config
	GetOaiConfig() *oaiconfig.Config
	GetIndexerConfig() *idxconfig.Config
}

// Ensure Config implements Interface.
var _ Interface = (*Config)(nil)

// Config is the fully-resolved application configuration.
type Config struct {
	App      *app.Config
	Logger   *logging.Config
	Database *dbconfig.Config
	Oai      *oaiconfig.Config
	Indexer  *idxconfig.Config
}

// LoadConfig reads the current Viper state into a Config, overlaying
// production-safe per-subsystem defaults wherever Viper has no value set.
func LoadConfig() (*Config, error) {
	db := dbconfig.NewConfig()
	if v := viper.GetString("database.host"); v != "" {
		db.Host = v
	}
	if v := viper.GetString("database.port"); v != "" {
		db.Port = v
	}
	if v := viper.GetString("database.user"); v != "" {
		db.User = v
	}
	db.Password = viper.GetString("database.password")
	if v := viper.GetString("database.dbname"); v != "" {
		db.DBName = v
	}
	if v := viper.GetString("database.sslmode"); v != "" {
		db.SSLMode = v
	}
	if v := viper.GetInt("database.max_open_conns"); v > 0 {
		db.MaxOpenConns = v
	}

	oaiCfg := oaiconfig.NewConfig()
	oaiCfg.Endpoint = viper.GetString("oai.endpoint")
	oaiCfg.MetadataPrefix = viper.GetString("oai.metadata_prefix")
	if v := viper.GetDuration("oai.timeout"); v > 0 {
		oaiCfg.Timeout = v
	}
	if v := viper.GetInt("oai.retries"); v > 0 {
		oaiCfg.Retries = v
	}

	idxCfg := idxconfig.NewConfig()
	idxCfg.DataDir = viper.GetString("indexer.data_dir")
	idxCfg.OaiRepository = viper.GetString("indexer.oai_repository")
	if v := viper.GetString("indexer.traject_binary"); v != "" {
		idxCfg.TrajectBinary = v
	}
	idxCfg.TrajectConfiguration = viper.GetString("indexer.traject_configuration")
	idxCfg.Repository = viper.GetString("indexer.repository")
	idxCfg.SolrURL = viper.GetString("indexer.solr_url")
	if v := viper.GetInt("indexer.solr_commit_within_ms"); v > 0 {
		idxCfg.SolrCommitWithinMs = v
	}
	if v := viper.GetDuration("indexer.record_timeout"); v > 0 {
		idxCfg.RecordTimeout = v
	}

	cfg := &Config{
		App: &app.Config{
			Name:        viper.GetString("app.name"),
			Environment: viper.GetString("app.environment"),
			Debug:       viper.GetBool("app.debug"),
		},
		Logger: &logging.Config{
			Level:       viper.GetString("logger.level"),
			Development: viper.GetBool("logger.development"),
			Encoding:    viper.GetString("logger.encoding"),
		},
		Database: db,
		Oai:      oaiCfg,
		Indexer:  idxCfg,
	}

	return cfg, nil
}

// ValidateHarvest checks the settings the harvest command requires.
func (c *Config) ValidateHarvest() error {
	if c.Oai.Endpoint == "" {
		return errors.New("oai.endpoint is required")
	}
	if c.Oai.MetadataPrefix == "" {
		return errors.New("oai.metadata_prefix is required")
	}
	if c.Indexer.DataDir == "" {
		return errors.New("indexer.data_dir is required")
	}
	return nil
}

// ValidateIndex checks the settings the index/purge commands require, on
// top of ValidateHarvest's data-directory and endpoint/prefix checks.
func (c *Config) ValidateIndex() error {
	if err := c.ValidateHarvest(); err != nil {
		return err
	}
	if c.Indexer.OaiRepository == "" {
		return errors.New("indexer.oai_repository is required")
	}
	if c.Indexer.Repository == "" {
		return errors.New("indexer.repository is required")
	}
	if c.Indexer.SolrURL == "" {
		return errors.New("indexer.solr_url is required")
	}
	if c.Indexer.TrajectConfiguration == "" {
		return errors.New("indexer.traject_configuration is required")
	}
	return nil
}

// ValidateDatabase checks the record-store connection settings every
// command that opens the record store needs (NewCommandDeps calls it).
func (c *Config) ValidateDatabase() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host and dbname are required")
	}
	return nil
}

// GetAppConfig returns the application-identity configuration.
func (c *Config) GetAppConfig() *app.Config { return c.App }

// GetLogConfig returns the logging configuration.
func (c *Config) GetLogConfig() *logging.Config { return c.Logger }

// GetDatabaseConfig returns the record-store connection configuration.
func (c *Config) GetDatabaseConfig() *dbconfig.Config { return c.Database }

// GetOaiConfig returns the OAI-PMH repository configuration.
func (c *Config) GetOaiConfig() *oaiconfig.Config { return c.Oai }

// GetIndexerConfig returns the index/purge phase configuration.
func (c *Config) GetIndexerConfig() *idxconfig.Config { return c.Indexer }
