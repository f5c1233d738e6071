package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/clippyhq/clippy/internal/blobstore"
	"github.com/clippyhq/clippy/internal/clippyconfig"
	"github.com/clippyhq/clippy/internal/deviceid"
	"github.com/clippyhq/clippy/internal/storage"
	"github.com/clippyhq/clippy/internal/syncengine"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagDataDir string
	flagUserID  string
	flagJSON    bool
	flagVerbose bool
	flagQuiet   bool
	flagNoSync  bool
)

// CLIContext bundles the engines and logger built once in
// PersistentPreRunE, eliminating redundant setup in each RunE handler
// (mirrors the teacher's root.go CLIContext).
type CLIContext struct {
	DataDir string
	Storage *storage.Engine
	Sync    *syncengine.Engine
	Logger  *slog.Logger
	JSON    bool
}

type cliContextKey struct{}

func cliContextFrom(ctx context.Context) *CLIContext {
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok {
		return nil
	}

	return cc
}

func mustCLIContext(ctx context.Context) *CLIContext {
	cc := cliContextFrom(ctx)
	if cc == nil {
		panic("BUG: CLIContext not found in context — ensure PersistentPreRunE ran")
	}

	return cc
}

// wantsJSON reports whether output should be JSON: explicit --json wins;
// otherwise fall back to whether stdout is a terminal (a non-terminal,
// e.g. a pipe, gets JSON by default so scripting Just Works).
func wantsJSON() bool {
	if flagJSON {
		return true
	}

	return !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clippy",
		Short:         "Multi-device clipboard history manager",
		Long:          "clippy keeps a local clipboard history and syncs it across devices over a pluggable blob store.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			cc := cliContextFrom(cmd.Context())
			if cc == nil || cc.Storage == nil {
				return nil
			}

			return cc.Storage.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: platform config dir + clippy)")
	cmd.PersistentFlags().StringVar(&flagUserID, "user-id", "", "sync user id (overrides CLIPPY_USER_ID)")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "force JSON output")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show detailed logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")
	cmd.PersistentFlags().BoolVar(&flagNoSync, "no-sync", false, "skip building the sync engine (local-only commands)")

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newSnapshotCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newCompactCmd())

	return cmd
}

// setup resolves the data directory and device/user identity, opens the
// local storage engine, and (unless --no-sync) builds the sync engine over
// the configured blob store backend, stashing the result in the command's
// context.
func setup(cmd *cobra.Command) error {
	logger := buildLogger()

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = clippyconfig.DataDir()
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	engine, err := storage.Open(dataDir, logger)
	if err != nil {
		return fmt.Errorf("opening local storage: %w", err)
	}

	cc := &CLIContext{DataDir: dataDir, Storage: engine, Logger: logger, JSON: wantsJSON()}

	if !flagNoSync {
		syncEngine, err := buildSyncEngine(dataDir, logger)
		if err != nil {
			logger.Warn("sync engine unavailable, continuing local-only", "error", err)
		} else {
			cc.Sync = syncEngine
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))

	return nil
}

// buildSyncEngine resolves storage_config.json (plus environment
// overrides), constructs the blob store backend it names, reads or mints
// the device id, and returns a ready syncengine.Engine.
func buildSyncEngine(dataDir string, logger *slog.Logger) (*syncengine.Engine, error) {
	storageCfg, err := clippyconfig.Resolve(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving storage config: %w", err)
	}

	store, err := blobstore.New(storageCfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("constructing blob store: %w", err)
	}

	deviceID, err := deviceid.Load(dataDir)
	if err != nil {
		return nil, fmt.Errorf("loading device id: %w", err)
	}

	userID := clippyconfig.ResolveUserID(clippyconfig.ReadEnvOverrides(), flagUserID)
	if userID == "" {
		return nil, fmt.Errorf("no user id: set --user-id or %s", clippyconfig.EnvUserID)
	}

	cfg := syncengine.Config{
		UserID:         userID,
		DeviceID:       deviceID,
		RetryAttempts:  storageCfg.RetryAttempts,
		TimeoutSeconds: storageCfg.TimeoutSeconds,
	}

	return syncengine.New(store, cfg, logger), nil
}

// buildLogger creates an slog.Logger configured by CLI flags. --verbose
// and --quiet are mutually exclusive (enforced by cobra); the default
// level is warn.
func buildLogger() *slog.Logger {
	level := slog.LevelWarn

	if flagVerbose {
		level = slog.LevelInfo
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
