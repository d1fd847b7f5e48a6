package cache

import "sync"

// MemoryStore is an in-process Store used by tests and as a drop-in when
// no durable cache directory is wanted.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Save(kind Kind, identity string, payload []byte) {
	dup := make([]byte, len(payload))
	copy(dup, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[string(kind)+"/"+Key(identity)] = dup
}

func (s *MemoryStore) Load(kind Kind, identity string) ([]byte, State) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.entries[string(kind)+"/"+Key(identity)]
	if !ok {
		return nil, Miss
	}
	return data, Hit
}

// Len reports the number of stored entries across all kinds.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
