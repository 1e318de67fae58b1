package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

// Key prefixes in the idempotency store. The two key spaces are deliberate:
// the lock enforces single-flight execution, the completion record enforces
// at-most-once effect after the lock is gone.
const (
	idempotencyKeyPrefix = "idempotency:"
	lockKeyPrefix        = "lock:"
)

// IdempotencyStore is the key-value port behind the coordinator. SetIfAbsent
// must be atomic at check-and-set granularity.
type IdempotencyStore interface {
	Exists(ctx context.Context, key string) (bool, error)                                 // Reports whether the key is present
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)  // Atomic create-with-TTL, false if present
	Delete(ctx context.Context, key string) error                                         // Removes the key
}

// IdempotencyConfig holds retention and retry settings for the coordinator.
type IdempotencyConfig struct {
	RecordTTL   time.Duration // completion record retention; must exceed realistic client retry windows
	LockLease   time.Duration // lock auto-expiry, recovers locks from crashed holders
	MaxAttempts int           // attempts of the whole sequence when the key is locked
	BackoffBase time.Duration // first retry delay, doubled on each subsequent attempt
}

// IdempotencyCoordinator makes a unit of work idempotent and mutually
// exclusive per request identifier.
type IdempotencyCoordinator struct {
	store IdempotencyStore
	cfg   IdempotencyConfig
}

func NewIdempotencyCoordinator(store IdempotencyStore, cfg IdempotencyConfig) *IdempotencyCoordinator {
	if cfg.RecordTTL == 0 {
		cfg.RecordTTL = 24 * time.Hour
	}
	if cfg.LockLease == 0 {
		cfg.LockLease = 10 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = 100 * time.Millisecond
	}
	return &IdempotencyCoordinator{store: store, cfg: cfg}
}

// Execute runs fn at most once for the given request identifier.
//
// A request id with a completion record fails with ErrDuplicateRequest. A
// request id whose lock is held fails with ErrConcurrentRequest; only that
// failure is retried, with exponential backoff, up to MaxAttempts of the
// whole check-acquire-run sequence. Other failures propagate immediately.
func (c *IdempotencyCoordinator) Execute(ctx context.Context, requestID uuid.UUID, fn func(ctx context.Context) error) error {
	backoff := c.cfg.BackoffBase

	var err error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			logger.Log.Warnw("request id locked, retrying",
				"request_id", requestID, "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err = c.executeOnce(ctx, requestID, fn)
		if !errors.Is(err, models.ErrConcurrentRequest) {
			return err
		}
	}

	return err
}

func (c *IdempotencyCoordinator) executeOnce(ctx context.Context, requestID uuid.UUID, fn func(ctx context.Context) error) error {
	recordKey := idempotencyKeyPrefix + requestID.String()
	lockKey := lockKeyPrefix + requestID.String()

	exists, err := c.store.Exists(ctx, recordKey)
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if exists {
		return models.ErrDuplicateRequest
	}

	acquired, err := c.store.SetIfAbsent(ctx, lockKey, "1", c.cfg.LockLease)
	if err != nil {
		return fmt.Errorf("lock acquisition failed: %w", err)
	}
	if !acquired {
		return models.ErrConcurrentRequest
	}

	// Release unconditionally so a failed unit of work never leaves the key
	// locked for the rest of the lease.
	defer func() {
		if err := c.store.Delete(ctx, lockKey); err != nil {
			logger.Log.Errorw("failed to release lock, lease will expire it",
				"key", lockKey, "error", err)
		}
	}()

	if err := fn(ctx); err != nil {
		// No completion record: a later retry with the same id may run again.
		return err
	}

	if _, err := c.store.SetIfAbsent(ctx, recordKey, "processed", c.cfg.RecordTTL); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	return nil
}
