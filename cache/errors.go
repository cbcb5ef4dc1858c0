package cache

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when writing to or closing a ChunkHandler that has already been closed.
var ErrClosed = errors.New("chunk handler already closed")

// ErrUnknownBackend is returned by Open for an unsupported storage.type.
var ErrUnknownBackend = errors.New("unknown storage backend")

// StorageError is a fault of a storage backend.
// Callers treat it as "could not cache", never as a failure of the request.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s storage: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Backend: backend, Op: op, Err: err}
}
