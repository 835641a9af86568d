package cache

import (
	"context"
	"sync"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/clock"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache. It exists for tests and for running the
// service without Redis; expired entries are dropped lazily on read.
type Memory struct {
	mu      sync.Mutex
	clock   clock.Clocker
	entries map[string]memoryEntry
}

// NewMemory creates an empty in-memory cache.
func NewMemory(clk clock.Clocker) *Memory {
	if clk == nil {
		clk = clock.New()
	}

	return &Memory{clock: clk, entries: make(map[string]memoryEntry)}
}

// Get returns the value at key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	if !e.expiresAt.IsZero() && m.clock.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, ErrNotFound
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)

	return out, nil
}

// Set stores value at key with the given ttl.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: make([]byte, len(value))}
	copy(e.value, value)

	if ttl > 0 {
		e.expiresAt = m.clock.Now().Add(ttl)
	}
	m.entries[key] = e

	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)

	return nil
}
