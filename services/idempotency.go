package services

import (
	"context"
	"errors"

	"spa-booking-backend/config"
	"spa-booking-backend/repository"
)

// Idempotent runs fn once per key and replays its response for repeats.
// An empty key or a nil store always runs fn. A failed fn frees the key.
func Idempotent(ctx context.Context, store repository.IdempotencyStore, log *config.Logger, key string, fn func() ([]byte, error)) ([]byte, bool, error) {
	if store == nil || key == "" {
		body, err := fn()
		return body, false, err
	}
	acquired, cached, err := store.Reserve(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return cached, true, nil
	}
	body, err := fn()
	if err != nil {
		if rerr := store.Release(ctx, key); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return nil, false, err
	}
	// the response stands even when it cannot be cached, but the pending
	// marker must not outlive the request
	if cerr := store.Complete(ctx, key, body); cerr != nil {
		log.Error("failed to store idempotent response", "key", key, "error", cerr)
		if rerr := store.Release(ctx, key); rerr != nil {
			log.Error("failed to release idempotency key", "key", key, "error", rerr)
		}
	}
	return body, false, nil
}
