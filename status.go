package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clippyhq/clippy/internal/storage"
	"github.com/clippyhq/clippy/internal/syncengine"
)

// cliStatus combines local storage and sync engine status for the "status"
// command's JSON and text output.
type cliStatus struct {
	DataDir string                  `json:"data_dir"`
	Storage storage.Stats           `json:"storage"`
	Sync    *syncengine.Status      `json:"sync,omitempty"`
	Remote  *syncengine.RemoteUsage `json:"remote,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show local storage and sync engine status",
		Long:  "Shows local storage and sync engine status. With --remote, also sums the size of every object under the user's oplog/ prefix via the blob store's Stat capability.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, remote)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "also report remote oplog object count and total size")

	return cmd
}

func runStatus(cmd *cobra.Command, remote bool) error {
	cc := mustCLIContext(cmd.Context())

	stats, err := cc.Storage.Stats()
	if err != nil {
		return fmt.Errorf("reading storage stats: %w", err)
	}

	st := cliStatus{DataDir: cc.DataDir, Storage: stats}

	if cc.Sync != nil {
		s := cc.Sync.GetStatus()
		st.Sync = &s
	}

	if remote {
		if cc.Sync == nil {
			return fmt.Errorf("--remote requires a configured sync engine")
		}

		usage, err := cc.Sync.RemoteUsage(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading remote usage: %w", err)
		}

		st.Remote = &usage
	}

	if cc.JSON {
		return printJSON(st)
	}

	printStatusText(st)

	return nil
}

func printStatusText(st cliStatus) {
	fmt.Printf("Data dir:      %s\n", st.DataDir)
	fmt.Printf("Items:         %d (tombstones: %d)\n", st.Storage.TotalItems, st.Storage.DeletedItems)
	fmt.Printf("Log size:      %s\n", formatSize(st.Storage.FileSize))

	if st.Sync == nil {
		fmt.Println("Sync:          not configured")

		return
	}

	fmt.Printf("Sync items:    %d\n", st.Sync.ItemCount)
	fmt.Printf("Syncing now:   %t\n", st.Sync.IsSyncing)
	fmt.Printf("Initialized:   %t\n", st.Sync.Initialized)
	fmt.Printf("Pending ops:   %d\n", st.Sync.PendingOps)

	if st.Sync.LastSync != nil {
		fmt.Printf("Last sync:     %s\n", formatTime(*st.Sync.LastSync))
	} else {
		fmt.Println("Last sync:     never")
	}

	if st.Remote != nil {
		fmt.Printf("Remote objects: %d\n", st.Remote.ObjectCount)
		fmt.Printf("Remote size:    %s\n", formatSize(st.Remote.TotalBytes))
	}
}
