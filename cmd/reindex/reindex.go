// Package reindex implements the scoped reindex operation: reset an OAI
// repository's parsed/deleted rows back into the index/purge pending
// queues, then run the index and purge phases against them.
package reindex

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/oai-harvest/harvester/cmd/common"
	"github.com/oai-harvest/harvester/internal/indexer"
)

// Command returns the reindex command.
func Command() *cobra.Command {
	var endpoint, metadataPrefix, repository string
	var preview bool

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Requeue a repository's records and re-run the index/purge phases",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}
			defer deps.Close()

			if endpoint == "" {
				endpoint = deps.Config.Oai.Endpoint
			}
			if metadataPrefix == "" {
				metadataPrefix = deps.Config.Oai.MetadataPrefix
			}
			if repository == "" {
				repository = deps.Config.Indexer.OaiRepository
			}
			if endpoint == "" || metadataPrefix == "" || repository == "" {
				return errors.New("--endpoint, --prefix, and --repository are required")
			}

			requeued, err := deps.Store.RequeueRepository(cmd.Context(), endpoint, metadataPrefix, repository)
			if err != nil {
				return fmt.Errorf("requeue repository: %w", err)
			}
			deps.Logger.Info("repository requeued", "repository", repository, "rows", requeued)

			idx, err := deps.BuildIndexer(repository)
			if err != nil {
				return fmt.Errorf("build indexer: %w", err)
			}

			outcome, err := idx.Run(cmd.Context(), indexer.RunOptions{
				Endpoint:       endpoint,
				MetadataPrefix: metadataPrefix,
				OaiRepository:  repository,
				Mode:           indexer.PendingOnly,
				Preview:        preview,
			})
			if err != nil {
				return err
			}

			deps.Logger.Info("reindex complete",
				"indexed", outcome.Indexed, "purged", outcome.Purged,
				"failed_index", outcome.FailedIndex, "failed_purge", outcome.FailedPurge)

			if outcome.Failed() {
				return fmt.Errorf("reindex completed with failures: %d index, %d purge",
					outcome.FailedIndex, outcome.FailedPurge)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "OAI-PMH base URL")
	cmd.Flags().StringVar(&metadataPrefix, "prefix", "", "OAI-PMH metadataPrefix")
	cmd.Flags().StringVar(&repository, "repository", "", "OAI repository name to reindex")
	cmd.Flags().BoolVar(&preview, "preview", false, "log what would happen without touching the record store")

	return cmd
}
