// Package memory provides an in-process RecordStore used for tests and
// ephemeral demo runs.
package memory

import (
	"context"
	"sync"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
)

// Store keeps records in a map. A zero Store is not usable; call New.
type Store struct {
	mu       sync.RWMutex
	records  map[string][]byte
	writeErr error
	puts     int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string][]byte)}
}

// Get returns a copy of the record stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.records[key]
	if !ok {
		return nil, apperrors.NotFound("record", key)
	}
	return append([]byte(nil), data...), nil
}

// Put stores a copy of data under key.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}
	s.records[key] = append([]byte(nil), data...)
	s.puts++
	return nil
}

// Delete removes the record under key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}
	delete(s.records, key)
	return nil
}

// SetWriteError makes every subsequent Put and Delete fail with err until it
// is reset with nil. Used to simulate a full or read-only store.
func (s *Store) SetWriteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Puts returns how many writes have succeeded.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// Raw sets a record without going through Put. Tests use it to plant
// corrupt data.
func (s *Store) Raw(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = append([]byte(nil), data...)
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error {
	return nil
}
