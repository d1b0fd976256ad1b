// Package cmd implements the command-line interface for the health
// checker service.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "healthchecker",
	Short: "Automated website health scanning for the lead dashboard",
	Long: `healthchecker runs the automated scan pipeline: it discovers local
businesses, queues website scans, runs them against PageSpeed under a
monthly quota, and writes scores back to the dashboard database.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to every
	// subcommand.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("healthchecker version %s\n", version)
		},
	})

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(scanCommand())
	rootCmd.AddCommand(discoverCommand())
}
