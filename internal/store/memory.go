package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore holds collections as JSON blobs in memory. Same semantics as
// FileStore; used in tests.
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	locks map[string]*sync.Mutex

	// FailWrites makes every Write error, for store-failure paths.
	FailWrites bool
}

func NewMemory() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}, locks: map[string]*sync.Mutex{}}
}

func (s *MemoryStore) Read(collection string, out any) error {
	s.mu.Lock()
	b, ok := s.data[collection]
	s.mu.Unlock()
	if !ok {
		b = []byte("[]")
	}
	return json.Unmarshal(b, out)
}

func (s *MemoryStore) Write(collection string, data any) error {
	if s.FailWrites {
		return fmt.Errorf("write %s: store unavailable", collection)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	s.mu.Lock()
	s.data[collection] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Lock(collection string) func() {
	s.mu.Lock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}
