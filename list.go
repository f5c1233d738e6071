package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clippyhq/clippy/internal/clipboard"
)

const listContentWidth = 60

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clipboard history items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	cc := mustCLIContext(cmd.Context())

	items := cc.Storage.GetAll()

	if cc.JSON {
		return printJSON(items)
	}

	printListText(items)

	return nil
}

func printListText(items []clipboard.Item) {
	headers := []string{"ID", "TYPE", "WHEN", "CONTENT"}
	rows := make([][]string, 0, len(items))

	for _, it := range items {
		t := time.Unix(it.Timestamp, 0)
		rows = append(rows, []string{it.ID, string(it.ItemType), formatTime(t), truncate(it.Content, listContentWidth)})
	}

	printTable(os.Stdout, headers, rows)
}
