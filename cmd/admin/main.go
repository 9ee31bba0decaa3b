package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOpts struct {
	dataDir string
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Inspect and repair In The Back server data",
		Long:          "admin reads the snapshots and audit trail a server writes under its data directory, and talks to a running server's loopback admin endpoints.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data", "./data", "runtime data directory")

	rootCmd.AddCommand(
		newSnapshotsCmd(opts),
		newBackpacksCmd(opts),
		newGiveCmd(opts),
		newAuditCmd(opts),
		newServerCmd(),
	)
	return rootCmd
}
