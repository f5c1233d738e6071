package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a clipboard history item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0])
		},
	}
}

func runDelete(cmd *cobra.Command, itemID string) error {
	cc := mustCLIContext(cmd.Context())

	ts := time.Now().Unix()
	if err := cc.Storage.Delete(itemID, ts); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	if cc.Sync != nil {
		if err := cc.Sync.LocalDelete(cmd.Context(), itemID); err != nil {
			cc.Logger.Warn("publishing delete failed, will be picked up on next sync", "error", err)
		}
	}

	cc.Statusf("deleted %s\n", itemID)

	if cc.JSON {
		return printJSON(map[string]string{"deleted": itemID})
	}

	return nil
}
