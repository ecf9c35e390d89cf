package cli

import (
	"github.com/spf13/cobra"

	"github.com/costwatch/costwatch/internal/api"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the CostWatch HTTP API server",
		Long: `Run the HTTP API server with the background rescan worker. The
server is configured through COSTWATCH_* environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.Run(cmd.Context())
		},
	}
}
