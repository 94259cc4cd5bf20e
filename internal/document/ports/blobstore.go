// Package ports declares the outbound interfaces of the document module.
package ports

import (
	"context"
	"io"
)

// BlobStore persists raw file content under opaque keys. Metadata lives in
// the relational store; this holds only bytes.
type BlobStore interface {
	// Put streams content under the key, replacing any existing blob.
	Put(ctx context.Context, key string, contentType string, content io.Reader) error

	// Get opens the blob for reading. Returns a not_found coded error when
	// the key does not exist. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
