package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt *time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return e.expiresAt != nil && !now.Before(*e.expiresAt)
}

// Memory is an in-process Store. Values are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	ttl  time.Duration
	now  func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}

	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}

	now := m.now()
	if !entry.expired(now) {
		return entry.value, nil
	}

	// Re-read under the write lock: a Set may have replaced the entry since.
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok = m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	if entry.expired(now) {
		delete(m.data, key)
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memoryEntry{value: value, expiresAt: expiry(m.now(), m.ttl)}
	return nil
}

// Delete is a no-op for missing keys.
func (m *Memory) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len counts stored entries, including ones that expired but were not yet read.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
