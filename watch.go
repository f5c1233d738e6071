package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clippyhq/clippy/internal/clippyconfig"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the background sync loop until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}
}

func runWatch(cmd *cobra.Command) error {
	cc := mustCLIContext(cmd.Context())

	if cc.Sync == nil {
		return fmt.Errorf("sync engine not configured")
	}

	cleanup, err := writePIDFile(clippyconfig.PidPath(cc.DataDir))
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := shutdownContext(cmd.Context(), cc.Logger)

	stopConfigWatch := watchConfigReload(ctx, cc)
	defer stopConfigWatch()

	cc.Statusf("watching for changes; press Ctrl-C to stop\n")
	cc.Sync.StartBackgroundSync(ctx)

	return nil
}
