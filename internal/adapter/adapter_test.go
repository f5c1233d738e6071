package adapter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clippyhq/clippy/internal/clipboard"
	"github.com/clippyhq/clippy/internal/oplog"
)

func TestToSyncItemRoundTrip(t *testing.T) {
	item := clipboard.Item{
		ID:        "abc",
		Content:   "hello",
		Timestamp: 1_700_000_000,
		ItemType:  clipboard.ItemTypeText,
	}

	sync, err := ToSyncItem(item, "laptop-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", sync.ID)
	assert.Equal(t, oplog.ContentTypeText, sync.ContentType)
	assert.Equal(t, "hello", sync.Content)
	assert.Equal(t, "laptop-1", sync.Metadata.SourceDevice)
	assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), sync.CreatedAt)
	assert.Empty(t, sync.Metadata.ContentHash)

	back, err := FromSyncItem(sync)
	require.NoError(t, err)
	assert.Equal(t, item.ID, back.ID)
	assert.Equal(t, item.Content, back.Content)
	assert.Equal(t, item.Timestamp, back.Timestamp)
	assert.Equal(t, item.ItemType, back.ItemType)
}

func TestToSyncItemRejectsNegativeTimestamp(t *testing.T) {
	item := clipboard.Item{ID: "x", ItemType: clipboard.ItemTypeText, Timestamp: -1}

	_, err := ToSyncItem(item, "d")
	require.Error(t, err)
}

func TestToSyncItemPopulatesContentHashForLargePayloads(t *testing.T) {
	item := clipboard.Item{
		ID:        "big",
		Content:   strings.Repeat("x", hashThreshold+1),
		ItemType:  clipboard.ItemTypeText,
		Timestamp: 10,
	}

	sync, err := ToSyncItem(item, "d")
	require.NoError(t, err)
	assert.NotEmpty(t, sync.Metadata.ContentHash)
}

func TestToSyncItemSkipsContentHashForSmallPayloads(t *testing.T) {
	item := clipboard.Item{ID: "small", Content: "hi", ItemType: clipboard.ItemTypeText, Timestamp: 10}

	sync, err := ToSyncItem(item, "d")
	require.NoError(t, err)
	assert.Empty(t, sync.Metadata.ContentHash)
}

func TestFilesTypeRoundTrip(t *testing.T) {
	sync := oplog.SyncItem{ID: "f", ContentType: oplog.ContentTypeFiles, Content: "/a/b.txt", CreatedAt: time.Unix(5, 0).UTC()}

	item, err := FromSyncItem(sync)
	require.NoError(t, err)
	assert.Equal(t, clipboard.ItemTypeFiles, item.ItemType)
}

func TestUnknownItemTypeIsRejected(t *testing.T) {
	item := clipboard.Item{ID: "z", ItemType: "unknown", Timestamp: 1}

	_, err := ToSyncItem(item, "d")
	require.Error(t, err)
}

func TestUnknownContentTypeIsRejected(t *testing.T) {
	sync := oplog.SyncItem{ID: "z", ContentType: "unknown"}

	_, err := FromSyncItem(sync)
	require.Error(t, err)
}

func TestToSyncItemNormalizesUnicodeToNFC(t *testing.T) {
	decomposed := "café" // "café" as NFD: e + combining acute accent
	precomposed := "café" // "café" as NFC: single precomposed character

	itemA := clipboard.Item{ID: "a", Content: decomposed, ItemType: clipboard.ItemTypeText, Timestamp: 1}
	itemB := clipboard.Item{ID: "b", Content: precomposed, ItemType: clipboard.ItemTypeText, Timestamp: 1}

	syncA, err := ToSyncItem(itemA, "device-macos")
	require.NoError(t, err)

	syncB, err := ToSyncItem(itemB, "device-linux")
	require.NoError(t, err)

	assert.Equal(t, precomposed, syncA.Content)
	assert.Equal(t, syncB.Content, syncA.Content)
}
