package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is a cached value together with the time it was produced and how
// long it stays valid.
type Entry[T any] struct {
	Value     T             `json:"value"`
	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`
}

// Fresh reports whether the entry is still inside its validity window at now.
func (e Entry[T]) Fresh(now time.Time) bool {
	if e.FetchedAt.IsZero() || e.TTL <= 0 {
		return false
	}
	return now.Sub(e.FetchedAt) < e.TTL
}

// Slot holds at most one Entry. Stores overwrite; the last write wins.
type Slot[T any] interface {
	Load(ctx context.Context) (Entry[T], bool, error)
	Store(ctx context.Context, entry Entry[T]) error
	Clear(ctx context.Context) error
}

// MemorySlot keeps the entry in process memory.
type MemorySlot[T any] struct {
	mu    sync.RWMutex
	entry *Entry[T]
}

// NewMemorySlot returns an empty in-process slot.
func NewMemorySlot[T any]() *MemorySlot[T] {
	return &MemorySlot[T]{}
}

// Load returns the stored entry, if any.
func (s *MemorySlot[T]) Load(_ context.Context) (Entry[T], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil {
		return Entry[T]{}, false, nil
	}
	return *s.entry, true, nil
}

// Store replaces the stored entry.
func (s *MemorySlot[T]) Store(_ context.Context, entry Entry[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = &entry
	return nil
}

// Clear empties the slot.
func (s *MemorySlot[T]) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = nil
	return nil
}

// RedisSlot keeps the entry under a single Redis key so every API replica
// shares it. The key expires together with the entry's TTL.
type RedisSlot[T any] struct {
	client redis.Cmdable
	key    string
}

// NewRedisSlot returns a slot stored under key.
func NewRedisSlot[T any](client redis.Cmdable, key string) *RedisSlot[T] {
	return &RedisSlot[T]{client: client, key: key}
}

// Load reads and decodes the stored entry. A missing key is not an error.
func (s *RedisSlot[T]) Load(ctx context.Context) (Entry[T], bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry[T]{}, false, nil
	}
	if err != nil {
		return Entry[T]{}, false, fmt.Errorf("load cache slot %s: %w", s.key, err)
	}

	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry[T]{}, false, fmt.Errorf("decode cache slot %s: %w", s.key, err)
	}
	return entry, true, nil
}

// Store encodes and writes the entry.
func (s *RedisSlot[T]) Store(ctx context.Context, entry Entry[T]) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache slot %s: %w", s.key, err)
	}
	if err := s.client.Set(ctx, s.key, payload, entry.TTL).Err(); err != nil {
		return fmt.Errorf("store cache slot %s: %w", s.key, err)
	}
	return nil
}

// Clear deletes the key.
func (s *RedisSlot[T]) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear cache slot %s: %w", s.key, err)
	}
	return nil
}
