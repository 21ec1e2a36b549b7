package storage

import (
	"context"
	"errors"
	"time"

	"leaderkill/pkg/metrics"
)

type instrumentedStore struct {
	backend string
	next    SharedStore
}

// Instrument wraps a store so every read and write is timed under the
// given backend label.
func Instrument(backend string, store SharedStore) SharedStore {
	return &instrumentedStore{backend: backend, next: store}
}

func (s *instrumentedStore) ReadSharedFile(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.ReadSharedFile(ctx, name)
	metrics.RecordStoreOp(s.backend, "read", resultLabel(err), time.Since(start).Seconds())
	return data, err
}

func (s *instrumentedStore) WriteSharedFile(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	err := s.next.WriteSharedFile(ctx, name, data)
	metrics.RecordStoreOp(s.backend, "write", resultLabel(err), time.Since(start).Seconds())
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
