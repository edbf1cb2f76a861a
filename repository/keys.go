package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// cart:{session_id} -> JSON cart
	KeyCart = "cart:%s"

	// idem:checkout:{idempotency_key} -> pending marker or cached response
	KeyIdemCheckout = "idem:checkout:%s"
)

func NewRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
