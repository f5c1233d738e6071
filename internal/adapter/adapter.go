// Package adapter translates between clipboard.Item (the local storage
// engine's on-disk shape) and oplog.SyncItem (the shared, replicated shape
// the sync engine exchanges between devices), per spec.md §4.4.
package adapter

import (
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/clippyhq/clippy/internal/clipboard"
	"github.com/clippyhq/clippy/internal/oplog"
	"github.com/clippyhq/clippy/pkg/quickxorhash"
)

// hashThreshold is the content size, in bytes, above which ToSyncItem
// opportunistically populates Metadata.ContentHash. The field is reserved
// for future large-payload externalization (spec.md §3); computing it
// early costs one pass over content already held in memory and lets a
// future store-the-blob-elsewhere change land without a wire format bump.
const hashThreshold = 4096

// ToSyncItem converts a local clipboard.Item into its shared oplog.SyncItem
// form, tagging it with sourceDevice for Metadata.SourceDevice (spec.md
// §4.4 to_sync_item). Timestamp (Unix seconds) becomes CreatedAt (UTC).
func ToSyncItem(item clipboard.Item, sourceDevice string) (oplog.SyncItem, error) {
	if item.Timestamp < 0 {
		return oplog.SyncItem{}, fmt.Errorf("adapter: item %q has negative timestamp %d", item.ID, item.Timestamp)
	}

	contentType, err := toContentType(item.ItemType)
	if err != nil {
		return oplog.SyncItem{}, err
	}

	sync := oplog.SyncItem{
		ID:          item.ID,
		ContentType: contentType,
		Content:     normalizeContent(item.Content),
		CreatedAt:   time.Unix(item.Timestamp, 0).UTC(),
		Metadata: oplog.Metadata{
			SourceDevice: sourceDevice,
		},
	}

	if len(sync.Content) > hashThreshold {
		sync.Metadata.ContentHash = contentHash(sync.Content)
	}

	return sync, nil
}

// FromSyncItem converts a shared oplog.SyncItem back into a local
// clipboard.Item (spec.md §4.4 from_sync_item). File-set metadata
// (FilePaths, FileTypes, Size) has no representation on the wire and is
// left empty — a files-type item round-tripped through sync degrades to
// its content string, which callers should treat as best-effort.
func FromSyncItem(sync oplog.SyncItem) (clipboard.Item, error) {
	itemType, err := toItemType(sync.ContentType)
	if err != nil {
		return clipboard.Item{}, err
	}

	return clipboard.Item{
		ID:        sync.ID,
		Content:   sync.Content,
		Timestamp: sync.CreatedAt.Unix(),
		ItemType:  itemType,
	}, nil
}

// normalizeContent applies Unicode NFC normalization before an item leaves
// the device, the same way the teacher's RemoteObserver normalizes file
// names (NFC) before comparing across platforms (internal/sync/observer_remote.go).
// A clipboard paste of decomposed text (e.g. macOS-produced NFD) would
// otherwise hash and compare differently than the same text typed on
// another device, producing spurious Add-vs-Add conflicts for content a
// human would consider identical.
func normalizeContent(content string) string {
	return norm.NFC.String(content)
}

func toContentType(t clipboard.ItemType) (oplog.ContentType, error) {
	switch t {
	case clipboard.ItemTypeText:
		return oplog.ContentTypeText, nil
	case clipboard.ItemTypeFiles:
		return oplog.ContentTypeFiles, nil
	default:
		return "", fmt.Errorf("adapter: unknown item type %q", t)
	}
}

func toItemType(t oplog.ContentType) (clipboard.ItemType, error) {
	switch t {
	case oplog.ContentTypeText:
		return clipboard.ItemTypeText, nil
	case oplog.ContentTypeFiles:
		return clipboard.ItemTypeFiles, nil
	default:
		return "", fmt.Errorf("adapter: unknown content type %q", t)
	}
}

// contentHash returns the base64-encoded QuickXorHash of content, reusing
// the teacher's OneDrive content-hashing algorithm (pkg/quickxorhash) for a
// cheap, non-cryptographic fingerprint.
func contentHash(content string) string {
	h := quickxorhash.New()
	_, _ = h.Write([]byte(content))

	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
