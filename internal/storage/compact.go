package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/clippyhq/clippy/internal/record"
)

const compactTmpName = "log.tmp"

// Compact rewrites the log so it contains exactly one Insert per live item
// and no tombstones, then atomically replaces the old log (spec.md §4.2
// compaction protocol):
//
//  1. flush the live writer (already durable — every write is fsynced)
//  2. write log.tmp with one Insert per (id, item) in the current index
//  3. rename log.tmp over clipboard.log — the atomic cut-over
//  4. reopen the main log in append mode; clear the tombstone set
//
// A crash before step 3 leaves the original log intact; a crash after
// leaves the compacted log intact, same as the teacher's token-file
// write-temp-then-rename idiom in internal/tokenfile.
func (e *Engine) Compact() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tmpPath := filepath.Join(e.dir, compactTmpName)

	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("storage: compact: creating %s: %w", tmpPath, err)
	}

	for id, item := range e.index {
		item := item
		rec := record.Record{Tag: record.TagInsert, Timestamp: item.Timestamp, ItemID: id, Payload: &item}

		if err := record.Encode(tmp, rec); err != nil {
			tmp.Close()

			return fmt.Errorf("storage: compact: encoding %s: %w", id, err)
		}
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()

		return fmt.Errorf("storage: compact: flushing %s: %w", tmpPath, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: compact: closing %s: %w", tmpPath, err)
	}

	if err := e.f.Close(); err != nil {
		return fmt.Errorf("storage: compact: closing live log: %w", err)
	}

	if err := os.Rename(tmpPath, e.logPath); err != nil {
		return fmt.Errorf("storage: compact: rename %s over %s: %w", tmpPath, e.logPath, err)
	}

	f, err := os.OpenFile(e.logPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("storage: compact: reopening %s: %w", e.logPath, err)
	}

	e.f = f
	e.tombstones = make(map[string]int64)

	e.logger.Info("storage: compaction complete", "live_items", len(e.index))

	return nil
}
