// Package oplog defines the shared, replicated data shapes of the sync
// protocol (spec.md §3): SyncClipboardItem, Operation, and Snapshot, plus
// the total order over operations that makes LWW deterministic.
package oplog

import "time"

// ContentType mirrors clipboard.ItemType in the shared-item vocabulary.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeFiles ContentType = "files"
)

// Metadata carries best-effort provenance for a SyncItem. SourceApp and
// ContentHash are optional; ContentHash is reserved for future large-payload
// externalization (spec.md §3) but is populated opportunistically by the
// adapter package for large text payloads.
type Metadata struct {
	SourceDevice string `json:"source_device"`
	SourceApp    string `json:"source_app,omitempty"`
	ContentHash  string `json:"content_hash,omitempty"`
}

// SyncItem is the shared, replicated form of a clipboard entry.
type SyncItem struct {
	ID          string      `json:"id"`
	ContentType ContentType `json:"content_type"`
	Content     string      `json:"content"`
	CreatedAt   time.Time   `json:"created_at"`
	Metadata    Metadata    `json:"metadata"`
}
