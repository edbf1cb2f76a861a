package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"spa-booking-backend/cart"

	"github.com/redis/go-redis/v9"
)

// CartStore keeps one cart per browsing session. Load returns an empty
// cart for unknown sessions.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Save(ctx context.Context, sessionID string, c *cart.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type RedisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{rdb: rdb, ttl: ttl}
}

func (s *RedisCartStore) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	raw, err := s.rdb.Get(ctx, fmt.Sprintf(KeyCart, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return decodeCart(raw)
}

func (s *RedisCartStore) Save(ctx context.Context, sessionID string, c *cart.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, fmt.Sprintf(KeyCart, sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, fmt.Sprintf(KeyCart, sessionID)).Err()
}

// MemoryCartStore stores carts serialized, so callers never share state
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string][]byte)}
}

func (s *MemoryCartStore) Load(_ context.Context, sessionID string) (*cart.Cart, error) {
	s.mu.Lock()
	raw, ok := s.carts[sessionID]
	s.mu.Unlock()
	if !ok {
		return cart.New(), nil
	}
	return decodeCart(raw)
}

func (s *MemoryCartStore) Save(_ context.Context, sessionID string, c *cart.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = raw
	return nil
}

func (s *MemoryCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

func decodeCart(raw []byte) (*cart.Cart, error) {
	c := cart.New()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if c.Lines == nil {
		c.Lines = []cart.Line{}
	}
	return c, nil
}
