package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryBackend keeps entries in a process-local map. Expired entries are
// dropped lazily on read and, when a sweep interval is set, by a janitor
// goroutine that bounds memory for keys that are never read again.
type MemoryBackend struct {
	mu       sync.RWMutex
	entries  map[string]entry
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryBackend creates an in-memory backend. sweepInterval <= 0 disables
// the janitor.
func NewMemoryBackend(sweepInterval time.Duration) *MemoryBackend {
	b := &MemoryBackend{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go b.janitor(sweepInterval)
	}
	return b
}

func (b *MemoryBackend) Name() string {
	return "memory"
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	e, ok := b.entries[key]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if b.now().After(e.expiresAt) {
		b.mu.Lock()
		if cur, ok := b.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(b.entries, key)
		}
		b.mu.Unlock()
		return nil, ErrMiss
	}
	return e.value, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	b.entries[key] = entry{value: value, expiresAt: b.now().Add(ttl)}
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	delete(b.entries, key)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	b.entries = make(map[string]entry)
	b.mu.Unlock()
	return nil
}

// Close stops the janitor. It is safe to call more than once.
func (b *MemoryBackend) Close() error {
	b.stopOnce.Do(func() { close(b.stop) })
	return nil
}

// Len returns the number of stored entries, expired or not
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

func (b *MemoryBackend) sweep() {
	now := b.now()
	b.mu.Lock()
	for key, e := range b.entries {
		if now.After(e.expiresAt) {
			delete(b.entries, key)
		}
	}
	b.mu.Unlock()
}

func (b *MemoryBackend) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.sweep()
		case <-b.stop:
			return
		}
	}
}
