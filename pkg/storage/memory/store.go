package memory

import (
	"context"
	"fmt"
	"sync"

	"leaderkill/pkg/storage"
)

// Store is a process-local SharedStore, used where the leader and the
// caller live in the same process.
type Store struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func New() *Store {
	return &Store{files: make(map[string][]byte)}
}

func (s *Store) ReadSharedFile(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *Store) WriteSharedFile(_ context.Context, name string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = buf
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Names returns the names of all written records.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	return names
}
