package syncengine

import (
	"context"
	"time"
)

// StartBackgroundSync runs a cooperative loop that calls Sync every
// sync_interval_seconds until ctx is cancelled (spec.md §4.3
// start_background_sync). Failures are logged and the loop continues on
// the next tick — this is the one place in the engine that swallows a
// sync error rather than propagating it (spec.md §7 "the background loop
// swallows them after logging"). It is safe to abort at any point: an
// in-flight Sync either completes or is re-discovered on the next tick.
func (e *Engine) StartBackgroundSync(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.syncInterval())
	defer ticker.Stop()

	e.logger.Info("syncengine: background sync started", "interval", e.cfg.syncInterval())

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("syncengine: background sync stopped")
			return
		case <-ticker.C:
			if err := e.Sync(ctx); err != nil {
				e.logger.Warn("syncengine: background sync failed, will retry next tick", "error", err)
			}
		}
	}
}
