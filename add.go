package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clippyhq/clippy/internal/adapter"
	"github.com/clippyhq/clippy/internal/clipboard"
)

func newAddCmd() *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a text item to the clipboard history",
		Long:  "Adds content (from the argument, --content, or stdin) as a new history entry, then publishes it for sync.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				content = args[0]
			}

			if content == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}

				content = string(data)
			}

			return runAdd(cmd, content)
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "item content (default: stdin)")

	return cmd
}

func runAdd(cmd *cobra.Command, content string) error {
	cc := mustCLIContext(cmd.Context())

	item := clipboard.Item{
		ID:        uuid.NewString(),
		Content:   content,
		Timestamp: time.Now().Unix(),
		ItemType:  clipboard.ItemTypeText,
	}

	if err := cc.Storage.Insert(item); err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}

	if cc.Sync != nil {
		syncItem, err := adapter.ToSyncItem(item, cc.Sync.DeviceID())
		if err != nil {
			return fmt.Errorf("converting item for sync: %w", err)
		}

		if err := cc.Sync.LocalAdd(cmd.Context(), syncItem); err != nil {
			cc.Logger.Warn("publishing add failed, will be picked up on next sync", "error", err)
		}
	}

	cc.Statusf("added %s\n", item.ID)

	if cc.JSON {
		return printJSON(item)
	}

	fmt.Println(item.ID)

	return nil
}
