package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/bootstrap"
)

// errRunInProgress is returned when another instance holds the run lock.
var errRunInProgress = errors.New("a batch run is already in progress")

// scanCommand runs one batch immediately and exits.
func scanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one scan batch now",
		Long: `Runs a single batch against the current automation settings and
prints the summary. The run takes the shared run lock, so it never
overlaps a scheduled batch.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()

			settings, err := app.Scheduler.GetSettings(ctx)
			if err != nil {
				return err
			}

			acquired, err := app.Lock.TryAcquire(ctx)
			if err != nil {
				return err
			}
			if !acquired {
				return errRunInProgress
			}
			defer func() {
				if releaseErr := app.Lock.Release(ctx); releaseErr != nil {
					app.Logger.Warn("Failed to release run lock", "error", releaseErr)
				}
			}()

			summary, err := app.Batch.Run(ctx, settings)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(encoded))

			return nil
		},
	}
}
