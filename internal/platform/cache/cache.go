// Package cache provides the bounded, time-expiring result store used by the
// analytics and reporting services. Entries are keyed per operation, owner,
// and parameters so that no principal can ever observe another principal's
// cached value.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// ---------------------------------------------------------------------------
// Store interface
// ---------------------------------------------------------------------------

// Store is the interface services cache computed results through.
// Implementations must be safe for concurrent use. The interface is errorless
// on purpose: a malfunctioning cache degrades to a miss, never to a failed
// request.
type Store interface {
	Get(key string) (interface{}, bool)
	Put(key string, value interface{})
	Delete(key string)
	Len() int
}

// Key builds the composite cache key for an operation. The owner identifier
// is a mandatory segment: results stay isolated per principal even when every
// other dimension of the key collides.
func Key(operation, ownerID string, params ...string) string {
	parts := make([]string, 0, 2+len(params))
	parts = append(parts, operation, ownerID)
	parts = append(parts, params...)
	return strings.Join(parts, ":")
}

// ---------------------------------------------------------------------------
// Memory store
// ---------------------------------------------------------------------------

const (
	// DefaultCapacity bounds the number of live entries.
	DefaultCapacity = 100
	// DefaultTTL is how long an entry is served after insertion.
	DefaultTTL = time.Hour
)

type entry struct {
	value      interface{}
	insertedAt time.Time
}

// Memory is a mutex-protected Store with a fixed TTL measured from insertion
// and a capacity bound enforced by evicting the least recently inserted
// entry. Expired entries are dropped lazily on Get and swept by the janitor.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*entry
	order    []string // insertion order, oldest first
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewMemory creates a Memory store. Non-positive capacity or TTL fall back to
// the defaults.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries:  make(map[string]*entry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// SetNow overrides the store's clock. Tests only.
func (m *Memory) SetNow(fn func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = fn
}

// Get returns the value stored under key, or a miss if absent or expired.
func (m *Memory) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.insertedAt) >= m.ttl {
		m.removeLocked(key)
		return nil, false
	}
	return e.value, true
}

// Put stores value under key. Overwriting an existing key counts as a fresh
// insertion: the TTL restarts and the entry moves to the back of the eviction
// queue. When the store is full the least recently inserted entry is evicted.
func (m *Memory) Put(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		m.removeOrderLocked(key)
	} else if len(m.entries) >= m.capacity {
		m.removeLocked(m.order[0])
	}
	m.entries[key] = &entry{value: value, insertedAt: m.now()}
	m.order = append(m.order, key)
}

// Delete removes a single entry.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(key)
}

// Len returns the number of live entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// StartJanitor runs a background goroutine that periodically sweeps expired
// entries. It stops when the context is cancelled.
func (m *Memory) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for key, e := range m.entries {
		if now.Sub(e.insertedAt) >= m.ttl {
			m.removeLocked(key)
		}
	}
}

func (m *Memory) removeLocked(key string) {
	delete(m.entries, key)
	m.removeOrderLocked(key)
}

func (m *Memory) removeOrderLocked(key string) {
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
