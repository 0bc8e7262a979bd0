package main

import (
	"fmt"

	"feedsync/internal/crawler"
	"feedsync/internal/formatter"
	"feedsync/internal/logger"
	"feedsync/internal/notify"
	"feedsync/internal/pipeline"

	"github.com/spf13/cobra"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	var (
		dryRun  bool
		sources []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every enabled source and import new records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			runID := logger.NewRunID()
			log := opts.logger(cmd, cfg).WithRun(runID)
			log.Debug("configuration loaded", "config", cfg.String())

			runner := pipeline.NewRunner(cfg, crawler.NewClient(&cfg.Retry, log), log, pipeline.Options{
				RunID:   runID,
				Sources: sources,
				DryRun:  dryRun,
			})

			res, err := runner.Run(cmd.Context())
			if err != nil {
				log.Error("run aborted", "error", err)
				fmt.Fprintf(cmd.OutOrStdout(), "# Run %s\n\nStatus: %s\n", runID, pipeline.StatusAborted)

				return fmt.Errorf("run %s: %w", pipeline.StatusAborted, err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.Report(res))

			if err := notify.New(cfg.Notify).Notify(cmd.Context(), res); err != nil {
				log.Warn("notification failed", "error", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the run without writing any file")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "Limit the run to the named source (repeatable)")

	return cmd
}
