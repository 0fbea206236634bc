package main

import (
	"github.com/spf13/cobra"

	"stanza/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the timing API server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			level := ""
			if ctx.logLevelFlag != nil {
				level = *ctx.logLevelFlag
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel: level,
				Bind:     bind,
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override the configured API bind address")
	return cmd
}
