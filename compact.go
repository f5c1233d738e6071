package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Rewrite the local log, dropping tombstones and superseded records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompact(cmd)
		},
	}
}

func runCompact(cmd *cobra.Command) error {
	cc := mustCLIContext(cmd.Context())

	if err := cc.Storage.Compact(); err != nil {
		return fmt.Errorf("compacting: %w", err)
	}

	cc.Statusf("compaction complete\n")

	return nil
}
