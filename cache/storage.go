// Package cache implements the storage the accelerator keeps response variants in.
//
// A resource identity (the canonical request URL) maps to any number of variant entries,
// each distinguished by its set of discriminators. Entries are written through a ChunkHandler
// and only become visible to Fetch once the handler is closed.
package cache

import (
	"context"
	"time"

	"github.com/always-cache/accelerator/header"
)

// Storage is an interface for a cache entry store.
//
// Implementations must be thread-safe!
type Storage interface {
	// Fetch returns every committed variant stored for url, in no particular order.
	// The boolean is false if there are no entries for url.
	// Fetch does not filter by freshness or discriminators.
	Fetch(ctx context.Context, url string) ([]Entry, bool, error)
	// Store begins writing e. Body chunks are written to the returned handler;
	// the entry replaces any entry with the same URL and discriminators when the handler is closed.
	Store(ctx context.Context, e Entry) (ChunkHandler, error)
	// Close releases the resources held by the storage.
	Close() error
}

// ChunkHandler accumulates the body of an entry being stored.
// A handler is used by a single goroutine.
type ChunkHandler interface {
	// Write appends a copy of chunk to the entry body.
	Write(chunk []byte) error
	// Close commits the entry to the storage.
	// Closing an already closed handler returns ErrClosed.
	Close() error
}

// Extras holds policy-specific data stored alongside an entry.
type Extras map[string]string

// Entry is a stored response variant.
type Entry struct {
	URL            string
	Discriminators Discriminators
	Expires        time.Time
	Status         string
	Header         header.Fields
	Body           [][]byte
	Extras         Extras
}

// Fresh reports whether the entry is still fresh at now.
func (e Entry) Fresh(now time.Time) bool {
	return e.Expires.After(now)
}

type commitFunc func(ctx context.Context, e Entry) error

// bufferedHandler keeps the chunks in memory and hands the finished entry to commit on Close.
type bufferedHandler struct {
	ctx    context.Context
	entry  Entry
	commit commitFunc
	closed bool
}

func newBufferedHandler(ctx context.Context, e Entry, commit commitFunc) *bufferedHandler {
	e.Discriminators = e.Discriminators.Canonical()
	e.Header = e.Header.Clone()
	e.Body = nil
	return &bufferedHandler{
		// the commit happens at the very end of a request and must not be cut short by it
		ctx:    context.WithoutCancel(ctx),
		entry:  e,
		commit: commit,
	}
}

func (h *bufferedHandler) Write(chunk []byte) error {
	if h.closed {
		return ErrClosed
	}
	c := make([]byte, len(chunk))
	copy(c, chunk)
	h.entry.Body = append(h.entry.Body, c)
	return nil
}

func (h *bufferedHandler) Close() error {
	if h.closed {
		return ErrClosed
	}
	h.closed = true
	return h.commit(h.ctx, h.entry)
}
