// Package retryharvest implements the retry-harvest command: reset every
// failed harvest row for an endpoint/prefix back to pending.
package retryharvest

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/oai-harvest/harvester/cmd/common"
)

// Command returns the retry-harvest command.
func Command() *cobra.Command {
	var endpoint, metadataPrefix string

	cmd := &cobra.Command{
		Use:   "retry-harvest",
		Short: "Reset every failed harvest record back to pending",
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
			if endpoint == "" || metadataPrefix == "" {
				return errors.New("--endpoint and --prefix are required")
			}

			rows, err := deps.Store.RetryHarvestAll(cmd.Context(), endpoint, metadataPrefix)
			if err != nil {
				return fmt.Errorf("retry harvest: %w", err)
			}

			deps.Logger.Info("retry-harvest complete", "rows", rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "OAI-PMH base URL")
	cmd.Flags().StringVar(&metadataPrefix, "prefix", "", "OAI-PMH metadataPrefix")

	return cmd
}
