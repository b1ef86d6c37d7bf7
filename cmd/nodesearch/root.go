package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/nodesearch/internal/config"
	"github.com/kailas-cloud/nodesearch/internal/version"
)

func newRootCmd() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:          "nodesearch",
		Short:        "Search index sync and query service for projects, components and users",
		Version:      version.Version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("nodesearch version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "Config environment (local, dev, prod)")

	cmd.AddCommand(
		newServeCmd(&env),
		newIndexCmd(&env),
		newReindexCmd(&env),
		newVersionCmd(),
	)
	return cmd
}
