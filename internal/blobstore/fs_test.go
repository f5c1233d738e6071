package blobstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemStoreWriteReadRoundTrip(t *testing.T) {
	s, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "user1/oplog/op1.json", []byte(`{"hello":"world"}`)))

	data, err := s.Read(ctx, "user1/oplog/op1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"hello":"world"}`, string(data))
}

func TestFileSystemStoreReadMissingIsNotFound(t *testing.T) {
	s, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Read(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileSystemStoreListPrefix(t *testing.T) {
	s, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Write(ctx, "user1/oplog/a.json", []byte("1")))
	require.NoError(t, s.Write(ctx, "user1/oplog/b.json", []byte("2")))
	require.NoError(t, s.Write(ctx, "user2/oplog/c.json", []byte("3")))

	entries, err := s.List(ctx, "user1/oplog/")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "user1/oplog/a.json", entries[0].Path)
	assert.Equal(t, "user1/oplog/b.json", entries[1].Path)
}

func TestFileSystemStoreDeleteIsIdempotent(t *testing.T) {
	s, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Delete(ctx, "never-written"))

	require.NoError(t, s.Write(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err = s.Read(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileSystemStoreStat(t *testing.T) {
	s, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Write(ctx, "k", []byte("12345")))

	st, err := s.Stat(ctx, "k")
	require.NoError(t, err)
	assert.EqualValues(t, 5, st.ContentLength)
}

func TestFileSystemStoreRejectsPathEscape(t *testing.T) {
	s, err := NewFileSystemStore(t.TempDir())
	require.NoError(t, err)

	err = s.Write(context.Background(), "../escape", []byte("x"))
	require.Error(t, err)
}

func TestBackendConfigRedaction(t *testing.T) {
	c := BackendConfig{Type: BackendS3, Bucket: "b", Region: "r", AccessKeyID: "AKIA", SecretAccessKey: "shh"}

	r := c.Redacted()
	assert.Equal(t, redactedValue, r.AccessKeyID)
	assert.Equal(t, redactedValue, r.SecretAccessKey)
	assert.Equal(t, "b", r.Bucket)
}

func TestBackendConfigValidate(t *testing.T) {
	require.Error(t, BackendConfig{Type: BackendS3}.Validate())
	require.NoError(t, BackendConfig{
		Type: BackendS3, Bucket: "b", Region: "r", AccessKeyID: "a", SecretAccessKey: "s",
	}.Validate())
	require.Error(t, BackendConfig{Type: "Bogus"}.Validate())
}
