// Package storage implements the local log-structured clipboard store
// (spec.md §4.2): an append-only record log, an in-memory index, crash-safe
// recovery, and offline compaction. It is the single source of truth for
// one device's local clipboard history.
package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/clippyhq/clippy/internal/clipboard"
	"github.com/clippyhq/clippy/internal/record"
)

const logFileName = "clipboard.log"

// Stats summarizes the engine's state, per spec.md §4.2 `stats()`.
type Stats struct {
	TotalItems   int   `json:"total_items"`
	DeletedItems int   `json:"deleted_items"`
	FileSize     int64 `json:"file_size"`
}

// Engine is the local storage engine. It is single-writer: all mutating
// methods serialize through mu, exactly as the teacher serializes its
// SQLiteStore writes through the store-wide lock in internal/sync/state.go.
type Engine struct {
	mu sync.Mutex

	dir     string
	logPath string
	f       *os.File
	logger  *slog.Logger

	index      map[string]clipboard.Item
	tombstones map[string]int64
}

// Open creates dir if absent, opens (or creates) dir/clipboard.log in append
// mode, runs recovery, and returns the ready engine.
func Open(dir string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("opening local storage engine", "dir", dir)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: creating data dir %s: %w", dir, err)
	}

	logPath := filepath.Join(dir, logFileName)

	e := &Engine{
		dir:        dir,
		logPath:    logPath,
		logger:     logger,
		index:      make(map[string]clipboard.Item),
		tombstones: make(map[string]int64),
	}

	if err := e.recover(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("storage: opening %s: %w", logPath, err)
	}

	e.f = f

	logger.Info("local storage engine ready", "dir", dir, "items", len(e.index))

	return e, nil
}

// recover scans the log from the beginning, applying each successfully
// decoded record to index/tombstones. It stops at the first decode error
// or clean EOF — a partially written trailing record is silently discarded
// (spec.md §4.2 recovery algorithm).
func (e *Engine) recover() error {
	f, err := os.OpenFile(e.logPath, os.O_CREATE|os.O_RDONLY, 0o600)
	if err != nil {
		return fmt.Errorf("storage: opening %s for recovery: %w", e.logPath, err)
	}
	defer f.Close()

	r := record.NewReader(f)

	count := 0

	for {
		rec, decErr := record.Decode(r)
		if decErr != nil {
			if !errors.Is(decErr, io.EOF) {
				e.logger.Warn("storage: recovery stopped at corrupt trailing record", "records_recovered", count, "reason", decErr)
			}

			break
		}

		e.apply(rec)
		count++
	}

	return nil
}

// apply mirrors a decoded record onto index/tombstones during recovery.
// Runtime writes (Insert, Delete, ClearAll) update the same maps directly
// after their append; unlike Insert, a recovered Insert for a tombstoned id
// is skipped rather than clearing the tombstone.
func (e *Engine) apply(rec record.Record) {
	switch rec.Tag {
	case record.TagInsert:
		if _, tombstoned := e.tombstones[rec.ItemID]; !tombstoned {
			e.index[rec.ItemID] = *rec.Payload
		}
	case record.TagDelete:
		e.tombstones[rec.ItemID] = rec.Timestamp
		delete(e.index, rec.ItemID)
	}
}

// Insert appends an Insert record, updates the index, and clears any
// tombstone for item.ID. Durably flushed before returning.
func (e *Engine) Insert(item clipboard.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec := record.Record{Tag: record.TagInsert, Timestamp: item.Timestamp, ItemID: item.ID, Payload: &item}

	if err := e.appendAndFlush(rec); err != nil {
		return err
	}

	e.index[item.ID] = item
	delete(e.tombstones, item.ID)

	return nil
}

// Delete appends a Delete record, removes item_id from the index, and adds
// a tombstone with ts. Deleting an unknown id is allowed — it still emits a
// tombstone (spec.md "Insert/delete idempotence" law).
func (e *Engine) Delete(itemID string, ts int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := record.Record{Tag: record.TagDelete, Timestamp: ts, ItemID: itemID}

	if err := e.appendAndFlush(rec); err != nil {
		return err
	}

	delete(e.index, itemID)
	e.tombstones[itemID] = ts

	return nil
}

// appendAndFlush writes rec to the live log and fsyncs it. Callers hold mu.
func (e *Engine) appendAndFlush(rec record.Record) error {
	if err := record.Encode(e.f, rec); err != nil {
		return fmt.Errorf("storage: append: %w", err)
	}

	if err := e.f.Sync(); err != nil {
		return fmt.Errorf("storage: flush: %w", err)
	}

	return nil
}

// GetAll returns the index's values sorted by timestamp descending.
func (e *Engine) GetAll() []clipboard.Item {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]clipboard.Item, 0, len(e.index))
	for _, it := range e.index {
		items = append(items, it)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Timestamp > items[j].Timestamp })

	return items
}

// ClearAll issues a Delete record for every currently-live id.
func (e *Engine) ClearAll(ts int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.index))
	for id := range e.index {
		ids = append(ids, id)
	}

	for _, id := range ids {
		rec := record.Record{Tag: record.TagDelete, Timestamp: ts, ItemID: id}
		if err := e.appendAndFlush(rec); err != nil {
			return err
		}

		delete(e.index, id)
		e.tombstones[id] = ts
	}

	return nil
}

// Stats reports total/deleted item counts and the on-disk log size.
func (e *Engine) Stats() (Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	info, err := e.f.Stat()
	if err != nil {
		return Stats{}, fmt.Errorf("storage: stat %s: %w", e.logPath, err)
	}

	return Stats{
		TotalItems:   len(e.index),
		DeletedItems: len(e.tombstones),
		FileSize:     info.Size(),
	}, nil
}

// Close releases the underlying file handle.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.f == nil {
		return nil
	}

	if err := e.f.Close(); err != nil {
		return fmt.Errorf("storage: close: %w", err)
	}

	return nil
}
