package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Cache key prefixes
const (
	balanceKeyPrefix    = "wallet-balance:"
	walletKeyPrefix     = "wallet:"
	historicalKeyPrefix = "historical-balance:"
)

// CacheConfig holds the TTL for each cache key space.
type CacheConfig struct {
	BalanceTTL    time.Duration // current balance entries
	WalletTTL     time.Duration // full wallet snapshots
	HistoricalTTL time.Duration // historical balance entries
}

// WalletCacheRepository is a read-through cache over Redis for wallet state.
// It is never authoritative: reads signal absence instead of failing, writes
// are best-effort, and a deserialization problem counts as a miss.
type WalletCacheRepository struct {
	client *redis.Client
	cfg    CacheConfig
}

func NewWalletCacheRepository(client *redis.Client, cfg CacheConfig) *WalletCacheRepository {
	return &WalletCacheRepository{client: client, cfg: cfg}
}

func balanceKey(walletID uuid.UUID) string {
	return balanceKeyPrefix + walletID.String()
}

func walletKey(walletID uuid.UUID) string {
	return walletKeyPrefix + walletID.String()
}

func historicalKey(walletID uuid.UUID, timestamp time.Time) string {
	return fmt.Sprintf("%s%s:%s", historicalKeyPrefix, walletID, timestamp.UTC().Format(time.RFC3339Nano))
}

// GetBalance returns the cached current balance, or ok=false on a miss.
func (r *WalletCacheRepository) GetBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, bool) {
	return r.getDecimal(ctx, balanceKey(walletID))
}

// SetBalance caches the current balance. Best-effort: failures are logged
// and swallowed.
func (r *WalletCacheRepository) SetBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal) {
	key := balanceKey(walletID)
	if err := r.client.Set(ctx, key, balance.String(), r.cfg.BalanceTTL).Err(); err != nil {
		logger.Log.Warnw("failed to cache balance", "key", key, "error", err)
	}
}

// GetWallet returns the cached wallet snapshot, or ok=false on a miss.
func (r *WalletCacheRepository) GetWallet(ctx context.Context, walletID uuid.UUID) (*models.WalletDB, bool) {
	key := walletKey(walletID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warnw("wallet cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var wallet models.WalletDB
	if err := json.Unmarshal([]byte(val), &wallet); err != nil {
		// Garbage in the cache is treated as a miss, never surfaced.
		logger.Log.Warnw("failed to unmarshal cached wallet", "key", key, "error", err)
		return nil, false
	}

	return &wallet, true
}

// SetWallet caches a full wallet snapshot. Best-effort.
func (r *WalletCacheRepository) SetWallet(ctx context.Context, wallet *models.WalletDB) {
	key := walletKey(wallet.WalletID)

	data, err := json.Marshal(wallet)
	if err != nil {
		logger.Log.Warnw("failed to marshal wallet for cache", "key", key, "error", err)
		return
	}

	if err := r.client.Set(ctx, key, data, r.cfg.WalletTTL).Err(); err != nil {
		logger.Log.Warnw("failed to cache wallet", "key", key, "error", err)
	}
}

// GetHistoricalBalance returns the cached balance at the given instant, or
// ok=false on a miss.
func (r *WalletCacheRepository) GetHistoricalBalance(ctx context.Context, walletID uuid.UUID, timestamp time.Time) (decimal.Decimal, bool) {
	return r.getDecimal(ctx, historicalKey(walletID, timestamp))
}

// SetHistoricalBalance caches the balance at the given instant. Historical
// entries are pinned to a past timestamp and only ever expire by TTL.
func (r *WalletCacheRepository) SetHistoricalBalance(ctx context.Context, walletID uuid.UUID, timestamp time.Time, balance decimal.Decimal) {
	key := historicalKey(walletID, timestamp)
	if err := r.client.Set(ctx, key, balance.String(), r.cfg.HistoricalTTL).Err(); err != nil {
		logger.Log.Warnw("failed to cache historical balance", "key", key, "error", err)
	}
}

// ClearCache invalidates the current-balance and wallet-snapshot entries for
// the wallet. Historical entries are left to expire on their own.
func (r *WalletCacheRepository) ClearCache(ctx context.Context, walletID uuid.UUID) {
	keys := []string{balanceKey(walletID), walletKey(walletID)}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warnw("failed to invalidate wallet cache", "keys", keys, "error", err)
	}
}

func (r *WalletCacheRepository) getDecimal(ctx context.Context, key string) (decimal.Decimal, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warnw("cache read failed", "key", key, "error", err)
		}
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(val)
	if err != nil {
		logger.Log.Warnw("failed to parse cached decimal", "key", key, "value", val, "error", err)
		return decimal.Zero, false
	}

	return d, true
}
