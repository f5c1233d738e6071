package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Materialize the current merged state as a new snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshot(cmd)
		},
	}
}

func runSnapshot(cmd *cobra.Command) error {
	cc := mustCLIContext(cmd.Context())

	if cc.Sync == nil {
		return fmt.Errorf("sync engine not configured")
	}

	if err := cc.Sync.CreateSnapshot(cmd.Context()); err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}

	cc.Statusf("snapshot created\n")

	return nil
}
