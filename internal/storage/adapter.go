// Package storage provides the key/blob stores behind the library repository.
// Keys are slash-separated regardless of backend.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no blob is stored under a key
var ErrNotFound = errors.New("not found")

// Adapter defines the interface for storage backends
type Adapter interface {
	// Put stores data at the given path
	Put(ctx context.Context, path string, data io.Reader) error

	// Get retrieves data from the given path. Missing keys yield ErrNotFound.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes data at the given path. Deleting a missing key is not an error.
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the keys starting with prefix, sorted ascending
	List(ctx context.Context, prefix string) ([]string, error)

	// Close cleans up any resources
	Close() error
}
