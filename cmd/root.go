package cmd

import (
	"fmt"
	"os"

	"ignita/pkg/logger"

	"github.com/spf13/cobra"
)

const version = "v0.1.0"

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "ignita",
		Short: "Ignita note server and board client",
		Long: `Ignita serves workspace notes over HTTP and WebSocket. Board edits are
applied on the server with an optimistic version check and retried on conflict.
The board subcommands talk to a running server.`,
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ignita",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
)

func init() {
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(migrateCmd)
	RootCmd.AddCommand(workspaceCommands)
	RootCmd.AddCommand(boardCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	defer logger.Sync()
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
