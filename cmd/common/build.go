package common

import (
	"fmt"

	"github.com/oai-harvest/harvester/internal/harvester"
	"github.com/oai-harvest/harvester/internal/indexer"
	"github.com/oai-harvest/harvester/internal/oaiclient"
	"github.com/oai-harvest/harvester/internal/traject"
	"github.com/oai-harvest/harvester/internal/xmlrules"
)

// BuildHarvester wires a harvester.Harvester from the shared deps and the
// OAI endpoint/prefix the running command names.
func (d *CommandDeps) BuildHarvester(endpoint, metadataPrefix string, preview bool) (*harvester.Harvester, error) {
	ruleSet, err := xmlrules.RuleSetFor(metadataPrefix)
	if err != nil {
		return nil, err
	}

	oaiCfg := d.Config.Oai
	client := oaiclient.New(oaiclient.Config{
		Endpoint: endpoint,
		Timeout:  oaiCfg.Timeout,
		Retries:  oaiCfg.Retries,
	})

	return &harvester.Harvester{
		Config: harvester.Config{
			Endpoint:       endpoint,
			MetadataPrefix: metadataPrefix,
			DataDir:        d.Config.Indexer.DataDir,
			OaiTimeout:     oaiCfg.Timeout,
			Preview:        preview,
		},
		Store:   d.Store,
		OAI:     client,
		RuleSet: ruleSet,
		Log:     d.Logger,
		Metrics: d.Metrics,
	}, nil
}

// BuildIndexer wires an indexer.Indexer against a traject/Solr backend.
func (d *CommandDeps) BuildIndexer(repository string) (*indexer.Indexer, error) {
	idxCfg := d.Config.Indexer
	backend := traject.New(traject.Config{
		Binary:             idxCfg.TrajectBinary,
		Configuration:      idxCfg.TrajectConfiguration,
		DataDir:            idxCfg.DataDir,
		Repository:         idxCfg.Repository,
		OaiRepository:      repository,
		SolrURL:            idxCfg.SolrURL,
		SolrCommitWithinMs: idxCfg.SolrCommitWithinMs,
		RecordTimeout:      idxCfg.RecordTimeout,
	})
	if err := backend.Preflight(); err != nil {
		return nil, fmt.Errorf("traject preflight: %w", err)
	}

	return &indexer.Indexer{
		Store:   d.Store,
		Backend: backend,
		Log:     d.Logger,
		Metrics: d.Metrics,
	}, nil
}
