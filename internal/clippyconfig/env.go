package clippyconfig

import (
	"os"

	"github.com/clippyhq/clippy/internal/blobstore"
)

// Environment variable names for overrides (spec.md §6).
const (
	EnvStorageConfig = "CLIPPY_STORAGE_CONFIG"
	EnvUserID        = "CLIPPY_USER_ID"

	envAWSBucket    = "AWS_S3_BUCKET"
	envAWSRegion    = "AWS_REGION"
	envAWSAccessKey = "AWS_ACCESS_KEY_ID"
	envAWSSecretKey = "AWS_SECRET_ACCESS_KEY"
	envAWSEndpoint  = "AWS_ENDPOINT"

	envMinioEndpoint  = "MINIO_ENDPOINT"
	envMinioAccessKey = "MINIO_ACCESS_KEY"
	envMinioSecretKey = "MINIO_SECRET_KEY"
)

// EnvOverrides holds the CLIPPY_* values read from environment variables.
// The per-backend AWS_* and MINIO_* variables are not held here; they are
// read directly by applyBackendEnvOverrides during Resolve.
type EnvOverrides struct {
	StorageConfigJSON string // CLIPPY_STORAGE_CONFIG: full JSON blob, replaces the file wholesale
	UserID            string // CLIPPY_USER_ID
}

// ReadEnvOverrides reads CLIPPY_STORAGE_CONFIG and CLIPPY_USER_ID.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		StorageConfigJSON: os.Getenv(EnvStorageConfig),
		UserID:            os.Getenv(EnvUserID),
	}
}

// applyBackendEnvOverrides layers per-backend environment variables onto
// backend's credential/endpoint fields, AWS_* names first and then the
// MINIO_* analogues (spec.md §6) — MINIO_* wins when both are set, since a
// MinIO deployment usually targets an S3Compatible backend sitting
// alongside a separately configured AWS account.
func applyBackendEnvOverrides(backend *blobstore.BackendConfig) {
	if v := os.Getenv(envAWSBucket); v != "" {
		backend.Bucket = v
	}

	if v := os.Getenv(envAWSRegion); v != "" {
		backend.Region = v
	}

	if v := os.Getenv(envAWSAccessKey); v != "" {
		backend.AccessKeyID = v
	}

	if v := os.Getenv(envAWSSecretKey); v != "" {
		backend.SecretAccessKey = v
	}

	if v := os.Getenv(envAWSEndpoint); v != "" {
		backend.Endpoint = v
	}

	if v := os.Getenv(envMinioEndpoint); v != "" {
		backend.Endpoint = v
	}

	if v := os.Getenv(envMinioAccessKey); v != "" {
		backend.AccessKeyID = v
	}

	if v := os.Getenv(envMinioSecretKey); v != "" {
		backend.SecretAccessKey = v
	}
}

// ResolveUserID determines the active user_id using CLI > env precedence
// (mirrors the teacher's ResolveConfigPath layering in internal/config).
func ResolveUserID(env EnvOverrides, cliUserID string) string {
	if cliUserID != "" {
		return cliUserID
	}

	return env.UserID
}
