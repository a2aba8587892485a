// Package migrate implements the migrate command: apply every pending
// record-store schema migration via goose.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "github.com/oai-harvest/harvester/cmd/common"
)

// Command returns the migrate command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending record-store schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("initialize dependencies: %w", err)
			}
			defer deps.Close()

			if err := deps.Store.Migrate(); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}

			deps.Logger.Info("migrations applied")
			return nil
		},
	}
}
