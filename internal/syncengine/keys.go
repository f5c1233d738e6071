package syncengine

import (
	"fmt"
	"time"

	"github.com/clippyhq/clippy/internal/oplog"
)

// Remote object layout under a shared per-user prefix (spec.md §4.3):
//
//	<user_id>/oplog/<op_id>.json
//	<user_id>/snapshots/<ts>_snapshot.json
//	<user_id>/snapshots/latest.json
//	<user_id>/data/ (reserved)

func oplogPrefix(userID string) string {
	return fmt.Sprintf("%s/oplog/", userID)
}

func oplogKey(userID, opID string) string {
	return fmt.Sprintf("%s/oplog/%s.json", userID, opID)
}

func snapshotKey(userID string, ts time.Time) string {
	return fmt.Sprintf("%s/snapshots/%s_snapshot.json", userID, oplog.FormatSnapshotTimestamp(ts))
}

func latestKey(userID string) string {
	return fmt.Sprintf("%s/snapshots/latest.json", userID)
}
