package token

import (
	"context"
	"sync"
	"time"
)

const blacklistSweepInterval = 5 * time.Minute

// MemoryBlacklist keeps revoked hashes in process. Entries disappear after
// their expiry; a background sweep reclaims them until Close.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

// NewMemoryBlacklist starts an in-memory store.
func NewMemoryBlacklist() *MemoryBlacklist {
	return newMemoryBlacklist(time.Now, blacklistSweepInterval)
}

func newMemoryBlacklist(now func() time.Time, sweep time.Duration) *MemoryBlacklist {
	b := &MemoryBlacklist{
		entries: make(map[string]time.Time),
		now:     now,
		stopCh:  make(chan struct{}),
	}
	go b.sweepLoop(sweep)
	return b
}

// Add records hash until expiresAt. Existing entries keep the later expiry.
func (b *MemoryBlacklist) Add(_ context.Context, hash string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if current, ok := b.entries[hash]; ok && current.After(expiresAt) {
		return nil
	}
	b.entries[hash] = expiresAt
	return nil
}

// Contains reports whether hash is present and unexpired.
func (b *MemoryBlacklist) Contains(_ context.Context, hash string) (bool, error) {
	b.mu.RLock()
	expiresAt, ok := b.entries[hash]
	b.mu.RUnlock()
	return ok && b.now().Before(expiresAt), nil
}

func (b *MemoryBlacklist) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.cleanup(b.now())
		case <-b.stopCh:
			return
		}
	}
}

func (b *MemoryBlacklist) cleanup(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for hash, expiresAt := range b.entries {
		if !now.Before(expiresAt) {
			delete(b.entries, hash)
		}
	}
}

// Close stops the sweeper.
func (b *MemoryBlacklist) Close() {
	b.once.Do(func() {
		close(b.stopCh)
	})
}
