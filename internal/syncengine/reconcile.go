package syncengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clippyhq/clippy/internal/blobstore"
	"github.com/clippyhq/clippy/internal/oplog"
)

// fetchParallelism bounds concurrent oplog object reads during a pull,
// grounded on the teacher's bounded errgroup dispatch
// (internal/sync/transfer.go dispatchPool).
const fetchParallelism = 8

// Sync reconciles local state with the remote keyspace (spec.md §4.3): it
// first uploads any queued local ops (for example ops re-queued after a
// failed flush), then on the first call it bootstraps from the latest
// snapshot, then (every call) pulls and applies new operations in the
// (timestamp, device_id) total order. At most one Sync runs at a time per
// engine (spec.md §4.3 sync, spec.md §5 is_syncing).
func (e *Engine) Sync(ctx context.Context) error {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	e.setSyncing(true)
	defer e.setSyncing(false)

	if err := e.flushPendingOps(ctx); err != nil {
		return fmt.Errorf("syncengine: publishing pending ops: %w", err)
	}

	e.stateMu.RLock()
	firstSync := e.lastSyncTS == nil
	e.stateMu.RUnlock()

	if firstSync {
		if err := e.loadLatestSnapshot(ctx); err != nil {
			return fmt.Errorf("syncengine: loading snapshot: %w", err)
		}
	}

	e.stateMu.RLock()
	since := e.lastSyncTS
	e.stateMu.RUnlock()

	ops, err := e.fetchOpsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("syncengine: fetching ops: %w", err)
	}

	sorted := oplog.SortOperations(ops)

	e.stateMu.Lock()
	for _, op := range sorted {
		e.applyOp(op)
	}

	e.initialized = true
	e.stateMu.Unlock()

	return nil
}

// loadLatestSnapshot reads snapshots/latest.json and, if present, the
// snapshot it points to, replacing items and last_sync_ts (spec.md §4.3
// "Snapshot loading"). A NotFound on latest.json means no snapshot yet:
// start empty with last_sync_ts unset.
func (e *Engine) loadLatestSnapshot(ctx context.Context) error {
	data, err := e.getStore().Read(ctx, latestKey(e.cfg.UserID))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			e.logger.Debug("syncengine: no snapshot yet", "user_id", e.cfg.UserID)
			return nil
		}

		return err
	}

	var pointer oplog.LatestPointer
	if err := json.Unmarshal(data, &pointer); err != nil {
		return fmt.Errorf("syncengine: decoding latest.json: %w", err)
	}

	snapData, err := e.getStore().Read(ctx, pointer.SnapshotPath)
	if err != nil {
		return fmt.Errorf("syncengine: reading snapshot %s: %w", pointer.SnapshotPath, err)
	}

	var snap oplog.Snapshot
	if err := json.Unmarshal(snapData, &snap); err != nil {
		return fmt.Errorf("syncengine: decoding snapshot %s: %w", pointer.SnapshotPath, err)
	}

	e.stateMu.Lock()
	e.items = make(map[string]oplog.SyncItem, len(snap.Items))
	e.itemOrigin = make(map[string]opOrigin, len(snap.Items))

	for _, it := range snap.Items {
		e.items[it.ID] = it
		// The snapshot doesn't carry each item's writing op, so approximate
		// its origin from the item's own created_at and the snapshotting
		// device — any later Add for the same target_id still resolves
		// correctly against this, since a real conflicting Add always
		// carries a timestamp at or after the snapshot's.
		e.itemOrigin[it.ID] = opOrigin{timestamp: it.CreatedAt, deviceID: snap.DeviceID}
	}

	lastOpTS := snap.LastOpTimestamp
	e.lastSyncTS = &lastOpTS
	e.stateMu.Unlock()

	e.logger.Info("syncengine: bootstrapped from snapshot", "path", pointer.SnapshotPath, "items", len(snap.Items))

	return nil
}

// fetchOpsSince lists <user_id>/oplog/, reads each object (in parallel,
// bounded), and keeps those with timestamp > since (or all, if since is
// nil) (spec.md §4.3 "Fetching ops"). Ascending (timestamp, device_id)
// sort is applied by the caller (Sync), not here.
func (e *Engine) fetchOpsSince(ctx context.Context, since *time.Time) ([]oplog.Operation, error) {
	entries, err := e.getStore().List(ctx, oplogPrefix(e.cfg.UserID))
	if err != nil {
		return nil, fmt.Errorf("listing oplog: %w", err)
	}

	var (
		mu  sync.Mutex
		ops []oplog.Operation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)

	for _, entry := range entries {
		entry := entry

		g.Go(func() error {
			data, readErr := e.getStore().Read(gctx, entry.Path)
			if readErr != nil {
				if errors.Is(readErr, blobstore.ErrNotFound) {
					// Raced with a delete/GC between List and Read; skip.
					return nil
				}

				return fmt.Errorf("reading %s: %w", entry.Path, readErr)
			}

			var op oplog.Operation
			if unmarshalErr := json.Unmarshal(data, &op); unmarshalErr != nil {
				return fmt.Errorf("decoding %s: %w", entry.Path, unmarshalErr)
			}

			if since != nil && !op.Timestamp.After(*since) {
				return nil
			}

			mu.Lock()
			ops = append(ops, op)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ops, nil
}
