package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile local state with the remote oplog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd)
		},
	}
}

func runSync(cmd *cobra.Command) error {
	cc := mustCLIContext(cmd.Context())

	if cc.Sync == nil {
		return fmt.Errorf("sync engine not configured (set --user-id / %s and a storage_config.json backend)", "CLIPPY_USER_ID")
	}

	if err := cc.Sync.SyncNow(cmd.Context()); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	status := cc.Sync.GetStatus()
	cc.Statusf("synced: %d item(s)\n", status.ItemCount)

	if cc.JSON {
		return printJSON(status)
	}

	return nil
}
