package oplog

import "time"

// Snapshot is a materialized point-in-time image of a sync engine's items
// map, used to bootstrap a new device without replaying the full oplog
// (spec.md §3, §4.3).
type Snapshot struct {
	Items             []SyncItem `json:"items"`
	SnapshotTimestamp time.Time  `json:"snapshot_timestamp"`
	LastOpTimestamp   time.Time  `json:"last_op_timestamp"`
	DeviceID          string     `json:"device_id"`
}

// LatestPointer is the contents of snapshots/latest.json.
type LatestPointer struct {
	SnapshotPath string    `json:"snapshot_path"`
	Timestamp    time.Time `json:"timestamp"`
}

// snapshotKeyLayout is the timestamp format used in snapshot object keys
// (spec.md §4.3): YYYYMMDD_HHMMSS.
const snapshotKeyLayout = "20060102_150405"

// FormatSnapshotTimestamp renders t in the snapshot-key timestamp format.
func FormatSnapshotTimestamp(t time.Time) string {
	return t.UTC().Format(snapshotKeyLayout)
}
