package repo

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/label-minter/server/internal/agent/model"
)

const DefaultMemoryStoreSize = 10_000

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryRecordStore is a bounded in-process RecordStore. Least recently used
// entries are evicted once the size limit is reached; expired entries read
// as misses and are dropped on access.
type MemoryRecordStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, memoryEntry]
	now   func() time.Time
}

func NewMemoryRecordStore(size int) (*MemoryRecordStore, error) {
	if size <= 0 {
		size = DefaultMemoryStoreSize
	}
	cache, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &MemoryRecordStore{cache: cache, now: time.Now}, nil
}

// WithClock replaces the time source; used to exercise expiry.
func (s *MemoryRecordStore) WithClock(now func() time.Time) *MemoryRecordStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryRecordStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(e.value), true, nil
}

func (s *MemoryRecordStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store(key, value, ttl)
	return nil
}

func (s *MemoryRecordStore) CompareAndSet(_ context.Context, key string, expected, next []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if expected == nil {
		if ok {
			return false, nil
		}
	} else if !ok || !bytes.Equal(e.value, expected) {
		return false, nil
	}

	s.store(key, next, ttl)
	return true, nil
}

// lookup must be called with mu held.
func (s *MemoryRecordStore) lookup(key string) (memoryEntry, bool) {
	e, ok := s.cache.Get(key)
	if !ok {
		return memoryEntry{}, false
	}
	if e.expired(s.now()) {
		s.cache.Remove(key)
		return memoryEntry{}, false
	}
	return e, true
}

// store must be called with mu held.
func (s *MemoryRecordStore) store(key string, value []byte, ttl time.Duration) {
	e := memoryEntry{value: bytes.Clone(value)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.cache.Add(key, e)
}

var _ model.RecordStore = (*MemoryRecordStore)(nil)
