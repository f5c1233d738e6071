package syncengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clippyhq/clippy/internal/blobstore"
)

func TestRemoteUsage_SumsObjectSizes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	store, err := blobstore.NewFileSystemStore(root)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	e := New(store, Config{UserID: "u1", DeviceID: "device_a"}, nil)
	e.now = clock.now

	idN := 0
	e.newID = func() string { idN++; return "op" + itoa(idN) }

	ctx := context.Background()

	require.NoError(t, e.LocalAdd(ctx, syncItem("item1", "hello", clock.t)))
	require.NoError(t, e.LocalAdd(ctx, syncItem("item2", "a slightly longer piece of content", clock.t)))

	usage, err := e.RemoteUsage(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, usage.ObjectCount)
	assert.Greater(t, usage.TotalBytes, int64(0))
}

func TestRemoteUsage_EmptyOplog(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	store, err := blobstore.NewFileSystemStore(root)
	require.NoError(t, err)

	e := New(store, Config{UserID: "u1", DeviceID: "device_a"}, nil)

	usage, err := e.RemoteUsage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, usage.ObjectCount)
	assert.Equal(t, int64(0), usage.TotalBytes)
}

func TestReplaceStore_SwapsBackend(t *testing.T) {
	t.Parallel()

	rootA := t.TempDir()
	rootB := t.TempDir()

	storeA, err := blobstore.NewFileSystemStore(rootA)
	require.NoError(t, err)

	storeB, err := blobstore.NewFileSystemStore(rootB)
	require.NoError(t, err)

	e := New(storeA, Config{UserID: "u1", DeviceID: "device_a"}, nil)

	require.NoError(t, e.LocalAdd(context.Background(), syncItem("item1", "hello", time.Unix(1_700_000_000, 0))))

	usage, err := e.RemoteUsage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, usage.ObjectCount)

	e.ReplaceStore(storeB)

	usage, err = e.RemoteUsage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, usage.ObjectCount, "after swapping backends, usage should reflect the new (empty) store")
}
