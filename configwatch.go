package main

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/clippyhq/clippy/internal/blobstore"
	"github.com/clippyhq/clippy/internal/clippyconfig"
)

// watchConfigReload watches storage_config.json for changes and rebuilds
// the sync engine's blob store backend in place, so a long-running
// "clippy watch" picks up rotated backend credentials without a restart.
// Grounded on the teacher's fsnotify-based local observer
// (internal/sync/observer_local.go), simplified to a single watched file.
// Returns a cleanup func; watching is best-effort and logs rather than
// fails the caller if fsnotify setup doesn't succeed.
func watchConfigReload(ctx context.Context, cc *CLIContext) func() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		cc.Logger.Warn("config watch disabled: creating fsnotify watcher", "error", err)
		return func() {}
	}

	configPath := clippyconfig.StorageConfigPath(cc.DataDir)

	// fsnotify watches directories, not individual files, so that an
	// editor's atomic save (temp file + rename) over configPath is still
	// seen as an event on the directory.
	if err := watcher.Add(cc.DataDir); err != nil {
		cc.Logger.Warn("config watch disabled: watching data dir", "dir", cc.DataDir, "error", err)
		watcher.Close()

		return func() {}
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if filepath.Clean(event.Name) != configPath {
					continue
				}

				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				reloadSyncBackend(cc, configPath)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				cc.Logger.Warn("config watch error", "error", err)
			}
		}
	}()

	return func() { watcher.Close() }
}

// reloadSyncBackend re-resolves storage_config.json and swaps the result
// into the running sync engine.
func reloadSyncBackend(cc *CLIContext, configPath string) {
	if cc.Sync == nil {
		return
	}

	storageCfg, err := clippyconfig.Resolve(cc.DataDir)
	if err != nil {
		cc.Logger.Warn("config reload failed, keeping current backend", "path", configPath, "error", err)
		return
	}

	store, err := blobstore.New(storageCfg.Backend)
	if err != nil {
		cc.Logger.Warn("config reload failed, keeping current backend", "path", configPath, "error", err)
		return
	}

	cc.Sync.ReplaceStore(store)
	cc.Logger.Info("storage_config.json changed, reloaded blob store backend", "path", configPath)
}
