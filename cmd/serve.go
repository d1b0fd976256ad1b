package cmd

import (
	"github.com/spf13/cobra"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/bootstrap"
)

// serveCommand runs the HTTP API and the automation scheduler.
func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and automation scheduler",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Serve()
		},
	}
}
