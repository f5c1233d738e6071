// Package clipboard defines the local clipboard item shape persisted by the
// storage engine. It has no knowledge of sync, the blob store, or the OS
// clipboard itself — those are all collaborators.
package clipboard

import "fmt"

// ItemType tags the kind of payload an Item carries.
type ItemType string

const (
	ItemTypeText  ItemType = "text"
	ItemTypeFiles ItemType = "files"
)

// FileEntry describes one file in a file-set item's FileTypes sequence.
type FileEntry struct {
	Path     string `json:"path"`
	FileType string `json:"file_type"`
	MimeType string `json:"mime_type"`
	Category string `json:"category"`
}

// Item is a single clipboard history entry, as stored locally.
//
// Invariants: ID is unique within a store; when ItemType is ItemTypeFiles,
// FilePaths is non-empty and FileTypes has the same length as FilePaths.
type Item struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"`
	ItemType  ItemType    `json:"item_type"`
	Size      *int64      `json:"size,omitempty"`
	FilePaths []string    `json:"file_paths,omitempty"`
	FileTypes []FileEntry `json:"file_types,omitempty"`
}

// Validate checks the file-set invariant from spec.md §3. It does not check
// ID uniqueness — that is a store-wide property the engine enforces.
func (it Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("clipboard: item has empty id")
	}

	if it.ItemType != ItemTypeFiles {
		return nil
	}

	if len(it.FilePaths) == 0 {
		return fmt.Errorf("clipboard: item %q has type files but no file_paths", it.ID)
	}

	if len(it.FileTypes) != len(it.FilePaths) {
		return fmt.Errorf("clipboard: item %q has %d file_paths but %d file_types",
			it.ID, len(it.FilePaths), len(it.FileTypes))
	}

	return nil
}
