// Package syncengine implements the LWW-oplog multi-device replication
// layer (spec.md §4.3): initial bootstrap from snapshot, incremental oplog
// pull, local-op publish, snapshot creation, and a background reconciler
// loop, all built on the blobstore.Store abstraction.
package syncengine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clippyhq/clippy/internal/blobstore"
	"github.com/clippyhq/clippy/internal/oplog"
)

// Engine owns one device's view of a user's shared clipboard history. The
// blob store handle is shared-by-clone across the engine and any
// background task it spawns, never an owning resource (spec.md §9).
type Engine struct {
	storeMu sync.RWMutex
	store   blobstore.Store

	cfg    Config
	logger *slog.Logger

	// state is behind stateMu (spec.md §5): readers run concurrently,
	// writers (LocalAdd, LocalDelete, applying pulled ops) are exclusive.
	stateMu     sync.RWMutex
	items       map[string]oplog.SyncItem
	itemOrigin  map[string]opOrigin
	lastSyncTS  *time.Time
	pendingOps  []oplog.Operation
	initialized bool

	// syncMu guards is_syncing: at most one Sync runs at a time per engine.
	syncMu sync.Mutex

	syncingMu sync.RWMutex
	syncing   bool

	// Overridable for tests.
	now   func() time.Time
	newID func() string
}

// New creates an Engine over store with cfg (defaults applied for any
// zero-valued fields per spec.md §6).
func New(store blobstore.Store, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:      store,
		cfg:        cfg.withDefaults(),
		logger:     logger,
		items:      make(map[string]oplog.SyncItem),
		itemOrigin: make(map[string]opOrigin),
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

func (e *Engine) setSyncing(v bool) {
	e.syncingMu.Lock()
	e.syncing = v
	e.syncingMu.Unlock()
}

// DeviceID returns this engine's configured device_id.
func (e *Engine) DeviceID() string {
	return e.cfg.DeviceID
}

// getStore returns the engine's current blob store handle.
func (e *Engine) getStore() blobstore.Store {
	e.storeMu.RLock()
	defer e.storeMu.RUnlock()

	return e.store
}

// ReplaceStore swaps in a freshly constructed blob store, letting a long-
// running "watch" process pick up rotated backend credentials without a
// restart. In-flight reads/writes against the old store finish unaffected;
// anything starting after this call uses store.
func (e *Engine) ReplaceStore(store blobstore.Store) {
	e.storeMu.Lock()
	e.store = store
	e.storeMu.Unlock()

	e.logger.Info("syncengine: blob store backend reloaded")
}

func (e *Engine) isSyncing() bool {
	e.syncingMu.RLock()
	defer e.syncingMu.RUnlock()

	return e.syncing
}

// LocalAdd constructs an Add operation and merges it into in-memory state
// under the write lock by the same rule a pulled op would use (spec.md
// §4.3 local_add), so a local add that loses a same-id race against an
// already-applied remote op does not clobber it. It then queues the op
// and flushes pending ops to the blob store.
func (e *Engine) LocalAdd(ctx context.Context, item oplog.SyncItem) error {
	op := oplog.Operation{
		OpID:      e.newID(),
		TargetID:  item.ID,
		Timestamp: e.now(),
		DeviceID:  e.cfg.DeviceID,
		Type:      oplog.OpAdd,
		Payload:   &item,
	}

	e.stateMu.Lock()
	e.mergeAdd(op)
	e.pendingOps = append(e.pendingOps, op)
	e.stateMu.Unlock()

	return e.flushPendingOps(ctx)
}

// LocalDelete constructs a Delete operation, removes item_id from state if
// present, queues it, and flushes (spec.md §4.3 local_delete).
func (e *Engine) LocalDelete(ctx context.Context, itemID string) error {
	op := oplog.Operation{
		OpID:      e.newID(),
		TargetID:  itemID,
		Timestamp: e.now(),
		DeviceID:  e.cfg.DeviceID,
		Type:      oplog.OpDelete,
	}

	e.stateMu.Lock()
	delete(e.items, itemID)
	delete(e.itemOrigin, itemID)
	e.pendingOps = append(e.pendingOps, op)
	e.stateMu.Unlock()

	return e.flushPendingOps(ctx)
}

// flushPendingOps drains pendingOps under the state lock, then writes each
// op outside the lock (spec.md §5: "Locks are released before any network
// I/O begins"). On a write failure, the remaining tail of the batch
// (including the failed op) is re-queued rather than dropped — the
// teacher's own transfer path never discards a failed unit of work
// (internal/sync/transfer_manager.go retries failed chunks), and spec.md
// §9's open question explicitly allows re-queueing for stronger delivery.
func (e *Engine) flushPendingOps(ctx context.Context) error {
	e.stateMu.Lock()
	batch := e.pendingOps
	e.pendingOps = nil
	e.stateMu.Unlock()

	for i, op := range batch {
		data, err := json.Marshal(op)
		if err != nil {
			e.requeue(batch[i:])

			return fmt.Errorf("syncengine: marshaling op %s: %w", op.OpID, err)
		}

		writeCtx, cancel := context.WithTimeout(ctx, e.cfg.timeout())
		err = e.getStore().Write(writeCtx, oplogKey(e.cfg.UserID, op.OpID), data)
		cancel()

		if err != nil {
			e.logger.Warn("syncengine: upload failed, re-queueing remaining ops",
				"op_id", op.OpID, "remaining", len(batch)-i, "error", err)
			e.requeue(batch[i:])

			return fmt.Errorf("syncengine: uploading op %s: %w", op.OpID, err)
		}
	}

	return nil
}

// requeue prepends ops to the front of pendingOps, preserving their
// original relative order for the next flush attempt.
func (e *Engine) requeue(ops []oplog.Operation) {
	if len(ops) == 0 {
		return
	}

	e.stateMu.Lock()
	e.pendingOps = append(append([]oplog.Operation{}, ops...), e.pendingOps...)
	e.stateMu.Unlock()
}

// GetAllItems returns a snapshot copy of the in-memory merged state
// (spec.md §4.3 get_all_items).
func (e *Engine) GetAllItems() []oplog.SyncItem {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	items := make([]oplog.SyncItem, 0, len(e.items))
	for _, it := range e.items {
		items = append(items, it)
	}

	return items
}

// SyncNow is an alias for Sync, exposed to callers for explicit
// reconciliation (spec.md §4.3 sync_now).
func (e *Engine) SyncNow(ctx context.Context) error {
	return e.Sync(ctx)
}

// GetStatus reports the engine's current state (spec.md §4.3 get_status).
func (e *Engine) GetStatus() Status {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	return Status{
		ItemCount:   len(e.items),
		IsSyncing:   e.isSyncing(),
		Initialized: e.initialized,
		LastSync:    e.lastSyncTS,
		PendingOps:  len(e.pendingOps),
	}
}
