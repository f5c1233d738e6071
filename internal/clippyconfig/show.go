package clippyconfig

import (
	"fmt"
	"io"
)

// RenderEffective writes cfg's redacted form as a human-readable summary to
// w, for a "config show" style command (spec.md §6 "sensitive fields
// redacted ... on read-back through the config API").
func RenderEffective(cfg *Config, w io.Writer) error {
	r := cfg.Redacted()
	ew := &errWriter{w: w}

	ew.printf("[backend]\n")
	ew.printf("  type = %q\n", r.Backend.Type)
	writeIfSet(ew, "root_path", r.Backend.RootPath)
	writeIfSet(ew, "bucket", r.Backend.Bucket)
	writeIfSet(ew, "region", r.Backend.Region)
	writeIfSet(ew, "endpoint", r.Backend.Endpoint)
	writeIfSet(ew, "access_key_id", r.Backend.AccessKeyID)
	writeIfSet(ew, "secret_access_key", r.Backend.SecretAccessKey)
	writeIfSet(ew, "access_key_secret", r.Backend.AccessKeySecret)
	writeIfSet(ew, "secret_id", r.Backend.SecretID)
	writeIfSet(ew, "secret_key", r.Backend.SecretKey)
	writeIfSet(ew, "container", r.Backend.Container)
	writeIfSet(ew, "account_name", r.Backend.AccountName)
	writeIfSet(ew, "account_key", r.Backend.AccountKey)
	ew.printf("\n")

	ew.printf("retry_attempts  = %d\n", r.RetryAttempts)
	ew.printf("timeout_seconds = %d\n", r.TimeoutSeconds)

	return ew.err
}

func writeIfSet(ew *errWriter, field, value string) {
	if value == "" {
		return
	}

	ew.printf("  %s = %q\n", field, value)
}

// errWriter wraps an io.Writer and captures the first write error, so
// callers can chain printf calls without checking each one individually
// (mirrors the teacher's internal/config/show.go).
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
