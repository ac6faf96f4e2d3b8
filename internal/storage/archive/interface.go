// Package archive stores exported session transcripts on a cold storage
// backend (local filesystem or S3-compatible object store).
package archive

import "context"

// Storage defines the interface for archive backends
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)
}
