package syncengine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clippyhq/clippy/internal/oplog"
)

// CreateSnapshot materializes the current items into a Snapshot, uploads it
// under a timestamped key, and overwrites latest.json to point at it
// (spec.md §4.3 create_snapshot). The snapshot object is written first;
// readers that see a stale latest.json while the new snapshot is being
// written simply load the older snapshot and pull more oplog —
// correctness is preserved (spec.md §4.3 "Snapshot creation").
func (e *Engine) CreateSnapshot(ctx context.Context) error {
	e.stateMu.RLock()

	items := make([]oplog.SyncItem, 0, len(e.items))
	for _, it := range e.items {
		items = append(items, it)
	}

	snap := oplog.Snapshot{Items: items, DeviceID: e.cfg.DeviceID}
	if e.lastSyncTS != nil {
		snap.LastOpTimestamp = *e.lastSyncTS
	}

	e.stateMu.RUnlock()

	snap.SnapshotTimestamp = e.now()

	snapKey := snapshotKey(e.cfg.UserID, snap.SnapshotTimestamp)

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("syncengine: marshaling snapshot: %w", err)
	}

	if err := e.getStore().Write(ctx, snapKey, data); err != nil {
		return fmt.Errorf("syncengine: writing snapshot %s: %w", snapKey, err)
	}

	pointer := oplog.LatestPointer{SnapshotPath: snapKey, Timestamp: snap.SnapshotTimestamp}

	pointerData, err := json.Marshal(pointer)
	if err != nil {
		return fmt.Errorf("syncengine: marshaling latest pointer: %w", err)
	}

	if err := e.getStore().Write(ctx, latestKey(e.cfg.UserID), pointerData); err != nil {
		return fmt.Errorf("syncengine: writing latest.json: %w", err)
	}

	e.logger.Info("syncengine: snapshot created", "key", snapKey, "items", len(items))

	return nil
}
