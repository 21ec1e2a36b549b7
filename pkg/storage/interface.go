package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a shared file has never been written.
	ErrNotFound = errors.New("record not found")
	// ErrNoSuchStore is returned when a locator does not resolve to an existing store.
	ErrNoSuchStore = errors.New("no such store")
	// ErrUnavailable is returned when the store cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// SharedStore is the durable name -> bytes mapping shared between the leader
// and any client holding store access.
type SharedStore interface {
	// ReadSharedFile returns the content of a named record or ErrNotFound.
	ReadSharedFile(ctx context.Context, name string) ([]byte, error)

	// WriteSharedFile creates or replaces a named record.
	WriteSharedFile(ctx context.Context, name string, data []byte) error

	// Close releases the connection held by the store.
	Close() error
}

// Opener resolves a locator string into an open store.
type Opener interface {
	Open(ctx context.Context, locator string) (SharedStore, error)
}
