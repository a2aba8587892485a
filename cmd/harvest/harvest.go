// Package harvest implements the harvest command: runs the import,
// download, and metadata phases in order, once or on a cron schedule.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	cmdcommon "github.com/oai-harvest/harvester/cmd/common"
	"github.com/oai-harvest/harvester/internal/harvester"
)

// Command returns the harvest command.
func Command() *cobra.Command {
	var (
		endpoint       string
		metadataPrefix string
		preview        bool
		schedule       string
	)

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest OAI-PMH records: import, download, and extract metadata",
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
				return errors.New("--endpoint and --prefix are required (or set oai.endpoint/oai.metadata_prefix)")
			}
			if deps.Config.Indexer.DataDir == "" {
				return errors.New("indexer.data_dir is required")
			}

			h, err := deps.BuildHarvester(endpoint, metadataPrefix, preview)
			if err != nil {
				return fmt.Errorf("build harvester: %w", err)
			}

			if schedule == "" {
				return runOnce(cmd.Context(), deps, h)
			}
			return runScheduled(deps, h, schedule)
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "OAI-PMH base URL")
	cmd.Flags().StringVar(&metadataPrefix, "prefix", "", "OAI-PMH metadataPrefix")
	cmd.Flags().BoolVar(&preview, "preview", false, "log what would happen without touching the record store")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression to run the harvest on a recurring schedule")

	return cmd
}

func runOnce(ctx context.Context, deps *cmdcommon.CommandDeps, h *harvester.Harvester) error {
	importResult, downloadResult, metadataResult, err := h.Run(ctx)
	if err != nil {
		return err
	}

	deps.Logger.Info("harvest complete",
		"imported", importResult.Imported, "deleted", importResult.Deleted,
		"downloaded", downloadResult.Succeeded, "download_failed", downloadResult.Failed,
		"parsed", metadataResult.Succeeded, "parse_failed", metadataResult.Failed)

	if downloadResult.Failed > 0 || metadataResult.Failed > 0 {
		return fmt.Errorf("harvest completed with failures: %d download, %d metadata",
			downloadResult.Failed, metadataResult.Failed)
	}
	return nil
}

func runScheduled(deps *cmdcommon.CommandDeps, h *harvester.Harvester, schedule string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := runOnce(ctx, deps, h); err != nil {
			deps.Logger.Error("scheduled harvest run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse cron schedule %q: %w", schedule, err)
	}

	deps.Logger.Info("starting scheduled harvest", "schedule", schedule)
	c.Start()
	defer c.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		deps.Logger.Info("shutdown signal received", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return errors.New("harvest scheduler context cancelled")
	}
}
