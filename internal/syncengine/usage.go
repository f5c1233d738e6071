package syncengine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RemoteUsage summarizes the oplog objects currently stored remotely for
// this engine's user, as reported by the blob store's Stat capability
// (spec.md §4.1).
type RemoteUsage struct {
	ObjectCount int   `json:"object_count"`
	TotalBytes  int64 `json:"total_bytes"`
}

// RemoteUsage lists <user_id>/oplog/ and stats each object, summing
// ContentLength. Reads are bounded and parallel, the same shape as
// fetchOpsSince.
func (e *Engine) RemoteUsage(ctx context.Context) (RemoteUsage, error) {
	entries, err := e.getStore().List(ctx, oplogPrefix(e.cfg.UserID))
	if err != nil {
		return RemoteUsage{}, fmt.Errorf("syncengine: listing oplog for usage: %w", err)
	}

	var (
		mu    sync.Mutex
		usage RemoteUsage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)

	for _, entry := range entries {
		entry := entry

		g.Go(func() error {
			stat, statErr := e.getStore().Stat(gctx, entry.Path)
			if statErr != nil {
				return fmt.Errorf("stat %s: %w", entry.Path, statErr)
			}

			mu.Lock()
			usage.ObjectCount++
			usage.TotalBytes += stat.ContentLength
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return RemoteUsage{}, err
	}

	return usage, nil
}
