package store

import (
	"sync"
	"time"
)

// Memory is a map-backed store. Nothing survives the process.
type Memory struct {
	mu       sync.Mutex
	data     map[string][]byte
	updated  map[string]time.Time
	readErr  error
	writeErr error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte), updated: make(map[string]time.Time)}
}

// Get returns a copy of the value stored under key, or fails with the error
// given to FailReads.
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, false, m.readErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value under key, or fails with the error given to
// FailWrites.
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data[key] = append([]byte(nil), value...)
	m.updated[key] = time.Now().UTC()
	return nil
}

// UpdatedAt returns when key was last written, in UTC.
func (m *Memory) UpdatedAt(key string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.updated[key]
	return at, ok, nil
}

// FailReads makes every following Get return err. Pass nil to recover.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes every following Set return err. Pass nil to recover.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}
