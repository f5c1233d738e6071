package syncengine

import (
	"time"

	"github.com/clippyhq/clippy/internal/oplog"
)

// opOrigin identifies the op that last wrote an item, for Add-vs-Add
// tiebreaking only — it is never exposed outside the engine.
type opOrigin struct {
	timestamp time.Time
	deviceID  string
}

// before reports whether o sorts strictly before other in the oplog's
// total order (oplog.Operation.Less, spec.md §4.3).
func (o opOrigin) before(other opOrigin) bool {
	if !o.timestamp.Equal(other.timestamp) {
		return o.timestamp.Before(other.timestamp)
	}

	return o.deviceID < other.deviceID
}

// applyOp applies one operation to items under the LWW rule (spec.md §4.3
// "Applying ops (LWW)"). Callers must hold stateMu for writing.
func (e *Engine) applyOp(op oplog.Operation) {
	switch op.Type {
	case oplog.OpAdd:
		e.mergeAdd(op)
	case oplog.OpDelete:
		e.applyDelete(op)
	}

	if e.lastSyncTS == nil || op.Timestamp.After(*e.lastSyncTS) {
		ts := op.Timestamp
		e.lastSyncTS = &ts
	}
}

// mergeAdd resolves Add-vs-Add for the same target_id by the enclosing
// op's (timestamp, device_id) total order: the payload belonging to the
// later-sorting op wins, so a genuine tie is broken by the
// lexicographically greater device_id (spec.md §6's open question on
// full LWW symmetry; see SPEC_FULL.md §6 resolution #2). Callers must
// hold stateMu for writing.
func (e *Engine) mergeAdd(op oplog.Operation) {
	if op.Payload == nil {
		return
	}

	origin := opOrigin{timestamp: op.Timestamp, deviceID: op.DeviceID}

	current, ok := e.itemOrigin[op.TargetID]
	if !ok || current.before(origin) {
		e.items[op.TargetID] = *op.Payload
		e.itemOrigin[op.TargetID] = origin
	}
}

// applyDelete: if items[target_id] is present and the op's timestamp is not
// older than the existing item's created_at, remove it; otherwise the
// delete is dropped as stale (spec.md §4.3 — "a delete older than the item
// it targets cannot win").
func (e *Engine) applyDelete(op oplog.Operation) {
	existing, ok := e.items[op.TargetID]
	if !ok {
		return
	}

	if !op.Timestamp.Before(existing.CreatedAt) {
		delete(e.items, op.TargetID)
		delete(e.itemOrigin, op.TargetID)
	}
}
