package clippyconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clippyhq/clippy/internal/blobstore"
)

func writeStorageConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(StorageConfigPath(dir), []byte(content), 0o600))
}

func TestLoadOrDefaultWithNoFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadOrDefault(StorageConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, DefaultRetryAttempts, cfg.RetryAttempts)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.TimeoutSeconds)
}

func TestLoadParsesFileSystemBackend(t *testing.T) {
	dir := t.TempDir()
	writeStorageConfig(t, dir, `{
		"backend": {"type": "FileSystem", "root_path": "/tmp/clippy-blobs"},
		"retry_attempts": 5,
		"timeout_seconds": 10
	}`)

	cfg, err := Load(StorageConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/clippy-blobs", cfg.Backend.RootPath)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 10, cfg.TimeoutSeconds)
}

func TestLoadRejectsInvalidBackend(t *testing.T) {
	dir := t.TempDir()
	writeStorageConfig(t, dir, `{"backend": {"type": "S3", "bucket": "x"}}`)

	_, err := Load(StorageConfigPath(dir))
	require.Error(t, err)
}

func TestResolveAppliesEnvStorageConfigOverride(t *testing.T) {
	dir := t.TempDir()
	writeStorageConfig(t, dir, `{"backend": {"type": "FileSystem", "root_path": "/from-file"}}`)

	t.Setenv(EnvStorageConfig, `{"backend": {"type": "FileSystem", "root_path": "/from-env"}}`)

	cfg, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "/from-env", cfg.Backend.RootPath)
}

func TestResolveAppliesAWSEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeStorageConfig(t, dir, `{
		"backend": {"type": "S3", "bucket": "b", "region": "us-east-1", "access_key_id": "a", "secret_access_key": "s"}
	}`)

	t.Setenv("AWS_S3_BUCKET", "overridden-bucket")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "overridden-bucket", cfg.Backend.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Backend.Region)
}

func TestResolveUserIDPrefersCLIOverEnv(t *testing.T) {
	env := EnvOverrides{UserID: "from-env"}
	assert.Equal(t, "from-cli", ResolveUserID(env, "from-cli"))
	assert.Equal(t, "from-env", ResolveUserID(env, ""))
}

func TestDataDirFallsBackWhenHomeUnset(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	dir := DataDir()
	assert.NotEmpty(t, dir)
}

func TestRenderEffectiveRedactsSecrets(t *testing.T) {
	cfg := &Config{
		Backend: blobstore.BackendConfig{
			Type:            blobstore.BackendS3,
			Bucket:          "b",
			Region:          "us-east-1",
			AccessKeyID:     "AKIA...",
			SecretAccessKey: "supersecret",
		},
		RetryAttempts:  3,
		TimeoutSeconds: 30,
	}

	var buf bytes.Buffer
	require.NoError(t, RenderEffective(cfg, &buf))

	out := buf.String()
	assert.NotContains(t, out, "AKIA...")
	assert.NotContains(t, out, "supersecret")
	assert.Contains(t, out, "***")
}

func TestStorageConfigPathJoinsDataDir(t *testing.T) {
	assert.Equal(t, filepath.Join("foo", "storage_config.json"), StorageConfigPath("foo"))
}
