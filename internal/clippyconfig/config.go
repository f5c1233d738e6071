// Package clippyconfig resolves the storage backend configuration and
// user/device identity from storage_config.json, environment variables, and
// platform defaults (spec.md §6).
package clippyconfig

import "github.com/clippyhq/clippy/internal/blobstore"

// Config is the on-disk shape of storage_config.json.
type Config struct {
	Backend        blobstore.BackendConfig `json:"backend"`
	RetryAttempts  int                     `json:"retry_attempts"`
	TimeoutSeconds int                     `json:"timeout_seconds"`
}

// Redacted returns a copy of c with Backend's sensitive fields replaced by
// "***", suitable for a config-show command (spec.md §6).
func (c Config) Redacted() Config {
	r := c
	r.Backend = c.Backend.Redacted()

	return r
}
