// Package deviceid manages the stable per-installation device identifier
// used as the device_id field on every oplog operation (spec.md §6).
package deviceid

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// fileName is the device identifier file within the data directory.
const fileName = "device_id"

// filePerms restricts the device_id file to owner-only read/write, matching
// the teacher's token file convention (internal/tokenfile.FilePerms).
const filePerms = 0o600

// Load reads <dataDir>/device_id, trimmed of surrounding whitespace. If the
// file does not exist, it mints a fresh UUID, persists it atomically, and
// returns it — stable thereafter for the life of the data directory
// (spec.md §6 "Device identifier").
func Load(dataDir string) (string, error) {
	path := filepath.Join(dataDir, fileName)

	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id == "" {
			return "", fmt.Errorf("deviceid: %s is empty", path)
		}

		return id, nil
	}

	if !os.IsNotExist(err) {
		return "", fmt.Errorf("deviceid: reading %s: %w", path, err)
	}

	id := uuid.NewString()
	if err := save(path, id); err != nil {
		return "", err
	}

	return id, nil
}

// save writes id to path atomically: a temp file in the same directory,
// flushed and renamed into place, so a crash mid-write never leaves a
// truncated device_id behind (mirrors internal/tokenfile.Save).
func save(path, id string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("deviceid: creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".device_id-*.tmp")
	if err != nil {
		return fmt.Errorf("deviceid: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, filePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("deviceid: setting permissions: %w", err)
	}

	if _, err := tmp.WriteString(id); err != nil {
		tmp.Close()
		return fmt.Errorf("deviceid: writing: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("deviceid: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("deviceid: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("deviceid: renaming: %w", err)
	}

	success = true

	return nil
}
