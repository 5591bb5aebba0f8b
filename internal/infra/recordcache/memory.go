// Package recordcache caches fetched ledger records. A confirmed
// certification record is immutable, so a hit never goes stale; only
// "not found" must bypass the cache (confirmation latency).
package recordcache

import (
	"context"
	"sync"
	"time"

	"authstamp/internal/domain"
)

type Memory struct {
	mu      sync.Mutex
	entries map[domain.RecordRef]memoryEntry
}

type memoryEntry struct {
	value     domain.LedgerRecord
	expiresAt time.Time
	hasExpiry bool
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[domain.RecordRef]memoryEntry),
	}
}

func (c *Memory) Get(ctx context.Context, ref domain.RecordRef) (*domain.LedgerRecord, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[ref]
	if !ok {
		return nil, false, nil
	}
	if entry.hasExpiry && time.Now().After(entry.expiresAt) {
		delete(c.entries, ref)
		return nil, false, nil
	}
	value := entry.value
	return &value, true, nil
}

func (c *Memory) Put(ctx context.Context, ref domain.RecordRef, value domain.LedgerRecord, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.entries[ref] = entry
	return nil
}
