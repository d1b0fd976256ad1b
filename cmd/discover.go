package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/bootstrap"
)

// discoverCommand runs a one-off discovery query and prints the results.
func discoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discover <query>",
		Short: "Discover businesses for a location query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			query := strings.Join(args, " ")

			outcome, err := app.Discovery.Discover(cmd.Context(), query)
			if err != nil {
				return err
			}

			if outcome.Synthetic {
				app.Logger.Warn("All sources failed, results are samples",
					"errors", strings.Join(outcome.SourceErrors, "; "))
			}

			encoded, err := json.MarshalIndent(outcome, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(encoded))

			return nil
		},
	}
}
