package clippyconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Load reads and decodes path as a storage_config.json document, seeded
// with DefaultConfig so unset fields retain their defaults, then validates
// the backend.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("clippyconfig: reading %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("clippyconfig: parsing %s: %w", path, err)
	}

	if err := cfg.Backend.Validate(); err != nil {
		return nil, fmt.Errorf("clippyconfig: %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault reads path if it exists; otherwise it returns
// DefaultConfig() with no backend selected, leaving backend resolution to
// the environment-override layer (CLIPPY_STORAGE_CONFIG or per-backend
// vars) or to the caller.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve applies the full override chain for the storage backend config:
// defaults -> storage_config.json -> CLIPPY_STORAGE_CONFIG (replaces
// wholesale) -> per-backend environment variables (spec.md §6). The result
// is validated before being returned.
func Resolve(dataDir string) (*Config, error) {
	cfg, err := LoadOrDefault(StorageConfigPath(dataDir))
	if err != nil {
		return nil, err
	}

	env := ReadEnvOverrides()

	if env.StorageConfigJSON != "" {
		override := DefaultConfig()
		if err := json.Unmarshal([]byte(env.StorageConfigJSON), override); err != nil {
			return nil, fmt.Errorf("clippyconfig: parsing %s: %w", EnvStorageConfig, err)
		}

		cfg = override
	}

	applyBackendEnvOverrides(&cfg.Backend)

	if err := cfg.Backend.Validate(); err != nil {
		return nil, fmt.Errorf("clippyconfig: resolved config: %w", err)
	}

	return cfg, nil
}
