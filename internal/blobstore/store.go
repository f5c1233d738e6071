// Package blobstore defines the abstract read/write/list/delete/stat
// capability surface the sync engine uses to talk to a remote keyspace
// (spec.md §4.1), plus concrete backends for the local filesystem, S3 and
// S3-compatible object stores (including OSS/COS, see config.go), and
// Azure Blob Storage.
//
// Per spec.md §9, this is modeled as a single interface and a tagged-variant
// configuration, not an inheritance tree: the six remote backings share one
// capability set and differ only in construction.
package blobstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Read and Stat when key does not exist.
var ErrNotFound = errors.New("blobstore: not found")

// Entry is one item returned by List.
type Entry struct {
	Path string
}

// Stat describes an object's metadata.
type Stat struct {
	ContentLength int64
}

// Store is the capability surface the sync engine consumes. Implementations
// must give read-your-writes consistency for the writing client; listing
// may be eventually consistent (spec.md §4.1).
type Store interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Entry, error)
	Delete(ctx context.Context, key string) error
	Stat(ctx context.Context, key string) (Stat, error)
}

// StoreError wraps a sentinel with the key and backend that produced it,
// the same way the teacher's graph.GraphError wraps an HTTP sentinel with
// status code and request ID (internal/graph/errors.go).
type StoreError struct {
	Backend string
	Key     string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("blobstore[%s]: %s: %v", e.Backend, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
