package storage

import (
	"context"
	"sync"
)

// MemoryKV is a process-local KV. FailWrites makes every Set return the given
// error, which tests use to simulate storage exhaustion.
type MemoryKV struct {
	mu     sync.RWMutex
	data   map[string][]byte
	writes map[string]int
	failOn error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		data:   map[string][]byte{},
		writes: map[string]int{},
	}
}

func (s *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (s *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes[key]++
	if s.failOn != nil {
		return s.failOn
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryKV) FailWrites(err error) {
	s.mu.Lock()
	s.failOn = err
	s.mu.Unlock()
}

// Writes reports how many times Set was called for key.
func (s *MemoryKV) Writes(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[key]
}

func (s *MemoryKV) Close() error {
	return nil
}
