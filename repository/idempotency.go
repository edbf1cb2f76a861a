package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const idemPending = "__pending__"

var ErrRequestInFlight = errors.New("a request with this idempotency key is in progress")

// IdempotencyStore remembers the response of a completed request by key.
// Reserve returns acquired=true when the caller owns the key; otherwise it
// returns the cached response, or ErrRequestInFlight while the owner runs.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (acquired bool, cached []byte, err error)
	Complete(ctx context.Context, key string, response []byte) error
	Release(ctx context.Context, key string) error
}

type RedisIdempotency struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotency(rdb *redis.Client, ttl time.Duration) *RedisIdempotency {
	return &RedisIdempotency{rdb: rdb, ttl: ttl}
}

func (s *RedisIdempotency) Reserve(ctx context.Context, key string) (bool, []byte, error) {
	k := fmt.Sprintf(KeyIdemCheckout, key)
	ok, err := s.rdb.SetNX(ctx, k, idemPending, s.ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if ok {
		return true, nil, nil
	}
	val, err := s.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between the two calls; try once more
		ok, err = s.rdb.SetNX(ctx, k, idemPending, s.ttl).Result()
		return ok, nil, err
	}
	if err != nil {
		return false, nil, err
	}
	if string(val) == idemPending {
		return false, nil, ErrRequestInFlight
	}
	return false, val, nil
}

func (s *RedisIdempotency) Complete(ctx context.Context, key string, response []byte) error {
	return s.rdb.Set(ctx, fmt.Sprintf(KeyIdemCheckout, key), response, s.ttl).Err()
}

func (s *RedisIdempotency) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, fmt.Sprintf(KeyIdemCheckout, key)).Err()
}

type MemoryIdempotency struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemoryIdempotency() *MemoryIdempotency {
	return &MemoryIdempotency{entries: make(map[string][]byte)}
}

func (s *MemoryIdempotency) Reserve(_ context.Context, key string) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.entries[key]
	if !ok {
		s.entries[key] = []byte(idemPending)
		return true, nil, nil
	}
	if string(val) == idemPending {
		return false, nil, ErrRequestInFlight
	}
	return false, append([]byte(nil), val...), nil
}

func (s *MemoryIdempotency) Complete(_ context.Context, key string, response []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), response...)
	return nil
}

func (s *MemoryIdempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
