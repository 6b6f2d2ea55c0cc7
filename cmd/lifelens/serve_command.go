package main

import (
	"github.com/spf13/cobra"

	"lifelens/internal/bootstrap"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return bootstrap.Run(cmd.Context(), cfg, bootstrap.RunOptions{LogLevel: ctx.logLevel()})
		},
	}
}
