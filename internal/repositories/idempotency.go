package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
)

// IdempotencyRepository is the key-value store behind the idempotency
// coordinator: completion records and lease locks. All operations are atomic
// at the check-and-set granularity (Redis EXISTS / SET NX / DEL).
type IdempotencyRepository struct {
	client *redis.Client
}

func NewIdempotencyRepository(client *redis.Client) *IdempotencyRepository {
	return &IdempotencyRepository{client: client}
}

// Exists reports whether the key is present.
func (r *IdempotencyRepository) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		logger.Log.Errorw("idempotency store exists failed", "key", key, "error", err)
		return false, err
	}
	return n > 0, nil
}

// SetIfAbsent atomically creates the key with a TTL. Returns false when the
// key already exists.
func (r *IdempotencyRepository) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		logger.Log.Errorw("idempotency store setnx failed", "key", key, "error", err)
		return false, err
	}
	return ok, nil
}

// Delete removes the key.
func (r *IdempotencyRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		logger.Log.Errorw("idempotency store delete failed", "key", key, "error", err)
		return err
	}
	return nil
}
