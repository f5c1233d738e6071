package syncengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clippyhq/clippy/internal/blobstore"
	"github.com/clippyhq/clippy/internal/oplog"
)

func newTestPair(t *testing.T) (*Engine, *Engine, *fakeClock) {
	t.Helper()

	root := t.TempDir()

	store, err := blobstore.NewFileSystemStore(root)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	a := New(store, Config{UserID: "u1", DeviceID: "device_a"}, nil)
	b := New(store, Config{UserID: "u1", DeviceID: "device_b"}, nil)

	idA, idB := 0, 0
	a.now = clock.now
	b.now = clock.now
	a.newID = func() string { idA++; return "opA" + itoa(idA) }
	b.newID = func() string { idB++; return "opB" + itoa(idB) }

	return a, b, clock
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func itoa(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}

	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}

	return string(buf)
}

func syncItem(id, content string, createdAt time.Time) oplog.SyncItem {
	return oplog.SyncItem{
		ID: id, ContentType: oplog.ContentTypeText, Content: content, CreatedAt: createdAt,
		Metadata: oplog.Metadata{SourceDevice: "test"},
	}
}

func TestTwoDevicesDisjointAdds(t *testing.T) {
	a, b, clock := newTestPair(t)
	ctx := context.Background()

	clock.t = time.Unix(10, 0)
	require.NoError(t, a.LocalAdd(ctx, syncItem("a", "X", clock.t)))

	clock.t = time.Unix(11, 0)
	require.NoError(t, b.LocalAdd(ctx, syncItem("b", "Y", clock.t)))

	require.NoError(t, a.Sync(ctx))
	require.NoError(t, b.Sync(ctx))

	for _, e := range []*Engine{a, b} {
		items := itemsByID(e.GetAllItems())
		require.Len(t, items, 2)
		assert.Equal(t, "X", items["a"].Content)
		assert.Equal(t, "Y", items["b"].Content)
	}
}

func TestDeletePropagation(t *testing.T) {
	a, b, clock := newTestPair(t)
	ctx := context.Background()

	clock.t = time.Unix(10, 0)
	require.NoError(t, a.LocalAdd(ctx, syncItem("a", "X", clock.t)))
	require.NoError(t, a.Sync(ctx))

	require.NoError(t, b.Sync(ctx))
	require.Len(t, b.GetAllItems(), 1)

	clock.t = time.Unix(20, 0)
	require.NoError(t, a.LocalDelete(ctx, "a"))
	require.NoError(t, a.Sync(ctx))

	require.NoError(t, b.Sync(ctx))
	assert.Empty(t, b.GetAllItems())
}

func TestConcurrentIDConflictDeviceIDTiebreak(t *testing.T) {
	a, b, clock := newTestPair(t)
	ctx := context.Background()

	tie := time.Unix(100, 0)
	clock.t = tie
	require.NoError(t, a.LocalAdd(ctx, syncItem("x", "from-a", tie)))
	require.NoError(t, b.LocalAdd(ctx, syncItem("x", "from-b", tie)))

	require.NoError(t, a.Sync(ctx))
	require.NoError(t, b.Sync(ctx))
	require.NoError(t, a.Sync(ctx))

	// Same timestamp on both ops: the tie is broken by device_id, so
	// "device_b" (lexicographically greater) wins on both sides.
	for _, e := range []*Engine{a, b} {
		items := itemsByID(e.GetAllItems())
		require.Len(t, items, 1)
		assert.Equal(t, "from-b", items["x"].Content)
	}

	assert.Equal(t, itemsByID(a.GetAllItems()), itemsByID(b.GetAllItems()))
}

func TestStaleDeleteDoesNotRemoveNewerItem(t *testing.T) {
	a, _, clock := newTestPair(t)
	ctx := context.Background()

	clock.t = time.Unix(10, 0)
	require.NoError(t, a.LocalAdd(ctx, syncItem("a", "X", clock.t)))

	a.stateMu.Lock()
	a.applyOp(oplog.Operation{
		TargetID: "a", Type: oplog.OpDelete, Timestamp: time.Unix(5, 0), DeviceID: "device_z",
	})
	a.stateMu.Unlock()

	items := itemsByID(a.GetAllItems())
	require.Len(t, items, 1)
	assert.Equal(t, "X", items["a"].Content)
}

func TestSnapshotBootstrapsNewDevice(t *testing.T) {
	a, b, clock := newTestPair(t)
	ctx := context.Background()

	clock.t = time.Unix(10, 0)
	require.NoError(t, a.LocalAdd(ctx, syncItem("a", "X", clock.t)))
	require.NoError(t, a.Sync(ctx))
	require.NoError(t, a.CreateSnapshot(ctx))

	require.NoError(t, b.Sync(ctx))
	items := itemsByID(b.GetAllItems())
	require.Len(t, items, 1)
	assert.Equal(t, "X", items["a"].Content)

	status := b.GetStatus()
	assert.True(t, status.Initialized)
	require.NotNil(t, status.LastSync)
}

func TestOrderingIsPermutationInvariant(t *testing.T) {
	base := time.Unix(1000, 0)

	ops := []oplog.Operation{
		{TargetID: "a", Type: oplog.OpAdd, Timestamp: base, DeviceID: "d1", Payload: &oplog.SyncItem{ID: "a", CreatedAt: base, Content: "1"}},
		{TargetID: "a", Type: oplog.OpAdd, Timestamp: base.Add(time.Second), DeviceID: "d2", Payload: &oplog.SyncItem{ID: "a", CreatedAt: base.Add(time.Second), Content: "2"}},
		{TargetID: "a", Type: oplog.OpDelete, Timestamp: base.Add(2 * time.Second), DeviceID: "d1"},
	}

	run := func(order []oplog.Operation) map[string]oplog.SyncItem {
		e := New(nil, Config{UserID: "u", DeviceID: "d"}, nil)
		e.stateMu.Lock()
		for _, op := range order {
			e.applyOp(op)
		}
		e.stateMu.Unlock()

		return e.items
	}

	sorted := oplog.SortOperations(ops)
	reversedInput := []oplog.Operation{ops[2], ops[0], ops[1]}
	sortedAgain := oplog.SortOperations(reversedInput)

	assert.Equal(t, run(sorted), run(sortedAgain))
}

func itemsByID(items []oplog.SyncItem) map[string]oplog.SyncItem {
	m := make(map[string]oplog.SyncItem, len(items))
	for _, it := range items {
		m[it.ID] = it
	}

	return m
}
