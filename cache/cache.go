package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// DefaultTTL applies when a caller passes a non-positive TTL to Set or SetNX.
const DefaultTTL = time.Hour

// ErrEmptyKey is returned when a caller passes an empty cache key.
var ErrEmptyKey = errors.New("cache: empty key")

// Cache is the key/value contract the engine programs against. Get reports
// a miss as (false, nil); transport problems inside an implementation never
// surface here.
type Cache interface {
	// Get unmarshals the value stored under key into dest and reports
	// whether the key was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value under key for ttl (DefaultTTL if ttl <= 0).
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether the
	// write happened. This is the conditional write registration staging
	// uses to close its read-then-write race.
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is the in-process store. It backs the Redis fallback path and is
// usable on its own in tests and single-process deployments. Expired entries
// are dropped lazily on access; there is no background sweeper.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}}
}

// Get implements [Cache].
func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set implements [Cache].
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expiresAt: time.Now().Add(effectiveTTL(ttl))}
	m.mu.Unlock()
	return nil
}

// SetNX implements [Cache].
func (m *Memory) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[key]; ok && time.Now().Before(entry.expiresAt) {
		return false, nil
	}
	m.entries[key] = memoryEntry{data: data, expiresAt: time.Now().Add(effectiveTTL(ttl))}
	return true, nil
}

// Remove implements [Cache].
func (m *Memory) Remove(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len reports the number of live entries. Test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	n := 0
	for _, entry := range m.entries {
		if now.Before(entry.expiresAt) {
			n++
		}
	}
	return n
}

func effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
