package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/lexfst/internal/conv"
)

// ErrNotFound is returned when a blob does not exist. Implementations must
// return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store reads and writes immutable, named blobs. Implementations must be
// safe for concurrent use.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create starts a streaming write. The blob becomes visible when the
	// returned WritableBlob is closed without error.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob in one call.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a stored blob.
type Blob interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange streams length bytes starting at off.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	Size() int64
	io.Closer
}

// WritableBlob is a blob being written. Close publishes it; Abort discards
// it. After either call the blob can no longer be written.
type WritableBlob interface {
	io.Writer
	io.Closer
	Sync() error
	Abort() error
}

// Mappable is implemented by blobs that can expose their contents without
// copying. The slice is valid until the blob is closed.
type Mappable interface {
	Bytes() ([]byte, error)
}

// ReadAll returns a copy of the whole blob.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	size, err := conv.Int64ToInt(b.Size())
	if err != nil {
		return nil, fmt.Errorf("blobstore: blob size: %w", err)
	}
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return append(make([]byte, 0, len(data)), data...), nil
	}
	if size == 0 {
		return []byte{}, nil
	}

	r, err := b.ReadRange(ctx, 0, int64(size))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("blobstore: read: %w", err)
	}
	return buf, nil
}
