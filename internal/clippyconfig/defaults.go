package clippyconfig

// Default values for the storage configuration (spec.md §6 "Defaults").
const (
	DefaultRetryAttempts  = 3
	DefaultTimeoutSeconds = 30
)

// DefaultConfig returns a Config populated with default retry/timeout
// values and no backend selected. Callers must set Backend (from file or
// environment) before use.
func DefaultConfig() *Config {
	return &Config{
		RetryAttempts:  DefaultRetryAttempts,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}
