// Package index implements the "index run" and "index retry" commands:
// the index then purge phases, in pending-only or failed-only mode.
package index

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/oai-harvest/harvester/cmd/common"
	"github.com/oai-harvest/harvester/internal/indexer"
)

// Command returns the index command and its run/retry subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Drive parsed records into the search index",
	}
	cmd.AddCommand(runCommand(), retryCommand())
	return cmd
}

func runCommand() *cobra.Command {
	var endpoint, metadataPrefix, repository string
	var preview bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Index pending records and purge pending deletions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhase(cmd, endpoint, metadataPrefix, repository, preview, indexer.PendingOnly, indexer.FailedFilter{})
		},
	}
	addCommonFlags(cmd, &endpoint, &metadataPrefix, &repository, &preview)
	return cmd
}

func retryCommand() *cobra.Command {
	var endpoint, metadataPrefix, repository string
	var preview bool
	var messageFilter string
	var maxAttempts int

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Retry records whose prior index or purge attempt failed",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := indexer.FailedFilter{MessageContains: messageFilter, MaxAttempts: maxAttempts}
			return runPhase(cmd, endpoint, metadataPrefix, repository, preview, indexer.FailedOnly, filter)
		},
	}
	addCommonFlags(cmd, &endpoint, &metadataPrefix, &repository, &preview)
	cmd.Flags().StringVar(&messageFilter, "message-filter", "", "only retry failures whose message contains this substring")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "only retry failures with fewer than this many attempts (0 means no limit)")
	return cmd
}

func addCommonFlags(cmd *cobra.Command, endpoint, metadataPrefix, repository *string, preview *bool) {
	cmd.Flags().StringVar(endpoint, "endpoint", "", "OAI-PMH base URL")
	cmd.Flags().StringVar(metadataPrefix, "prefix", "", "OAI-PMH metadataPrefix")
	cmd.Flags().StringVar(repository, "repository", "", "OAI repository name to scope the sweep to")
	cmd.Flags().BoolVar(preview, "preview", false, "log what would happen without touching the record store")
}

func runPhase(
	cmd *cobra.Command,
	endpoint, metadataPrefix, repository string,
	preview bool,
	mode indexer.RunMode,
	filter indexer.FailedFilter,
) error {
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

	idx, err := deps.BuildIndexer(repository)
	if err != nil {
		return fmt.Errorf("build indexer: %w", err)
	}

	outcome, err := idx.Run(cmd.Context(), indexer.RunOptions{
		Endpoint:       endpoint,
		MetadataPrefix: metadataPrefix,
		OaiRepository:  repository,
		Mode:           mode,
		Filter:         filter,
		Preview:        preview,
	})
	if err != nil {
		return err
	}

	deps.Logger.Info("index run complete",
		"indexed", outcome.Indexed, "purged", outcome.Purged,
		"failed_index", outcome.FailedIndex, "failed_purge", outcome.FailedPurge)

	if outcome.Failed() {
		return fmt.Errorf("index run completed with failures: %d index, %d purge",
			outcome.FailedIndex, outcome.FailedPurge)
	}
	return nil
}
