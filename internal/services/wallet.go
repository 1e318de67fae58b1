package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// WalletReader defines wallet read methods used by the service.
type WalletReader interface {
	GetByID(ctx context.Context, walletID uuid.UUID) (*models.WalletDB, error) // Returns (nil, nil) when absent
	ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error)        // Reports whether the user owns a wallet
}

// WalletWriter defines wallet write methods used by the service.
type WalletWriter interface {
	Save(ctx context.Context, wallet *models.WalletDB) error // Upserts the wallet row
}

// UserReader defines user lookup for wallet creation.
type UserReader interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) // Returns (nil, nil) when absent
}

// TransactionWriter appends ledger entries.
type TransactionWriter interface {
	Save(ctx context.Context, txn *models.TransactionDB) error
}

// TransactionReader reads the ledger.
type TransactionReader interface {
	GetByWalletAndPeriod(ctx context.Context, walletID uuid.UUID, start, end time.Time) ([]models.TransactionDB, error)
	SumSignedAmountsUpTo(ctx context.Context, walletID uuid.UUID, timestamp time.Time) (decimal.Decimal, error)
}

// WalletCache is the read-through cache beside persistence. Reads signal
// absence instead of failing; writes and invalidation are best-effort.
type WalletCache interface {
	GetBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, bool)
	SetBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal)
	GetWallet(ctx context.Context, walletID uuid.UUID) (*models.WalletDB, bool)
	SetWallet(ctx context.Context, wallet *models.WalletDB)
	GetHistoricalBalance(ctx context.Context, walletID uuid.UUID, timestamp time.Time) (decimal.Decimal, bool)
	SetHistoricalBalance(ctx context.Context, walletID uuid.UUID, timestamp time.Time, balance decimal.Decimal)
	ClearCache(ctx context.Context, walletID uuid.UUID)
}

// IdempotencyExecutor serializes and deduplicates a unit of work per request
// identifier.
type IdempotencyExecutor interface {
	Execute(ctx context.Context, requestID uuid.UUID, fn func(ctx context.Context) error) error
}

// FallbackHandler degrades infrastructure faults into a uniform outcome.
type FallbackHandler interface {
	HandleDepositFallback(walletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID, cause error) error
	HandleWithdrawFallback(walletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID, cause error) error
	HandleTransferFallback(fromWalletID, toWalletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID, cause error) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// WalletService orchestrates wallet operations: it wires the balance model
// to persistence and cache, runs every mutation under the idempotency
// coordinator, and publishes committed transactions to Kafka.
type WalletService struct {
	walletReader WalletReader
	walletWriter WalletWriter
	userReader   UserReader
	txnWriter    TransactionWriter
	txnReader    TransactionReader
	cache        WalletCache
	idempotency  IdempotencyExecutor
	fallback     FallbackHandler
	kafkaWriter  KafkaWriter
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	walletReader WalletReader,
	walletWriter WalletWriter,
	userReader UserReader,
	txnWriter TransactionWriter,
	txnReader TransactionReader,
	cache WalletCache,
	idempotency IdempotencyExecutor,
	fallback FallbackHandler,
	kafkaWriter KafkaWriter,
) *WalletService {
	return &WalletService{
		walletReader: walletReader,
		walletWriter: walletWriter,
		userReader:   userReader,
		txnWriter:    txnWriter,
		txnReader:    txnReader,
		cache:        cache,
		idempotency:  idempotency,
		fallback:     fallback,
		kafkaWriter:  kafkaWriter,
	}
}

// CreateWallet creates an active zero-balance wallet for the user. Each user
// may own at most one wallet.
func (s *WalletService) CreateWallet(ctx context.Context, userID uuid.UUID) (*models.WalletDB, error) {
	user, err := s.userReader.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	exists, err := s.walletReader.ExistsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Log.Warnw("user already has a wallet", "user_id", userID)
		return nil, models.ErrUserAlreadyHasWallet
	}

	wallet := models.NewWallet(userID)
	if err := s.walletWriter.Save(ctx, wallet); err != nil {
		return nil, err
	}

	return wallet, nil
}

// GetWallet returns the wallet, cache first.
func (s *WalletService) GetWallet(ctx context.Context, walletID uuid.UUID) (*models.WalletDB, error) {
	if wallet, ok := s.cache.GetWallet(ctx, walletID); ok {
		return wallet, nil
	}

	wallet, err := s.findWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	s.cache.SetWallet(ctx, wallet)
	return wallet, nil
}

// GetBalance returns the wallet's current balance, cache first.
func (s *WalletService) GetBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	if balance, ok := s.cache.GetBalance(ctx, walletID); ok {
		return balance, nil
	}

	wallet, err := s.findWallet(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}

	s.cache.SetBalance(ctx, walletID, wallet.Balance)
	return wallet.Balance, nil
}

// GetHistoricalBalance returns the balance at the given instant: the signed
// sum of the wallet's ledger entries with created_at <= timestamp.
func (s *WalletService) GetHistoricalBalance(ctx context.Context, walletID uuid.UUID, timestamp time.Time) (decimal.Decimal, error) {
	if balance, ok := s.cache.GetHistoricalBalance(ctx, walletID, timestamp); ok {
		return balance, nil
	}

	if _, err := s.findWallet(ctx, walletID); err != nil {
		return decimal.Zero, err
	}

	balance, err := s.txnReader.SumSignedAmountsUpTo(ctx, walletID, timestamp)
	if err != nil {
		return decimal.Zero, err
	}

	s.cache.SetHistoricalBalance(ctx, walletID, timestamp, balance)
	return balance, nil
}

// GetTransactions returns the wallet's ledger entries within [start, end].
// A nil start defaults to the epoch, a nil end to now.
func (s *WalletService) GetTransactions(ctx context.Context, walletID uuid.UUID, start, end *time.Time) ([]models.TransactionDB, error) {
	if _, err := s.findWallet(ctx, walletID); err != nil {
		return nil, err
	}

	effectiveStart := time.Unix(0, 0).UTC()
	if start != nil {
		effectiveStart = *start
	}
	effectiveEnd := time.Now()
	if end != nil {
		effectiveEnd = *end
	}

	if effectiveStart.After(effectiveEnd) {
		return nil, models.ErrInvalidRange
	}

	return s.txnReader.GetByWalletAndPeriod(ctx, walletID, effectiveStart, effectiveEnd)
}

// Deposit adds funds to the wallet under the request's idempotency key.
func (s *WalletService) Deposit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID) error {
	err := s.idempotency.Execute(ctx, requestID, func(ctx context.Context) error {
		wallet, err := s.findWallet(ctx, walletID)
		if err != nil {
			return err
		}

		txn, err := wallet.Deposit(amount)
		if err != nil {
			return err
		}

		if err := s.walletWriter.Save(ctx, wallet); err != nil {
			return err
		}
		if err := s.txnWriter.Save(ctx, txn); err != nil {
			return err
		}

		s.cache.ClearCache(ctx, walletID)
		s.publishTransaction(ctx, txn)
		return nil
	})
	if err != nil {
		if models.IsBusinessError(err) {
			return err
		}
		return s.fallback.HandleDepositFallback(walletID, amount, requestID, err)
	}
	return nil
}

// Withdraw removes funds from the wallet under the request's idempotency key.
func (s *WalletService) Withdraw(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID) error {
	err := s.idempotency.Execute(ctx, requestID, func(ctx context.Context) error {
		wallet, err := s.findWallet(ctx, walletID)
		if err != nil {
			return err
		}

		txn, err := wallet.Withdraw(amount)
		if err != nil {
			return err
		}

		if err := s.walletWriter.Save(ctx, wallet); err != nil {
			return err
		}
		if err := s.txnWriter.Save(ctx, txn); err != nil {
			return err
		}

		s.cache.ClearCache(ctx, walletID)
		s.publishTransaction(ctx, txn)
		return nil
	})
	if err != nil {
		if models.IsBusinessError(err) {
			return err
		}
		return s.fallback.HandleWithdrawFallback(walletID, amount, requestID, err)
	}
	return nil
}

// Transfer moves funds between two wallets under the request's idempotency
// key. Both ledger legs are created linked and both caches invalidated.
func (s *WalletService) Transfer(ctx context.Context, fromWalletID, toWalletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID) error {
	err := s.idempotency.Execute(ctx, requestID, func(ctx context.Context) error {
		if fromWalletID == toWalletID {
			return models.ErrSameWalletTransfer
		}

		source, err := s.findWallet(ctx, fromWalletID)
		if err != nil {
			return err
		}
		target, err := s.findWallet(ctx, toWalletID)
		if err != nil {
			return err
		}

		out, in, err := models.Transfer(source, target, amount)
		if err != nil {
			return err
		}

		if err := s.walletWriter.Save(ctx, source); err != nil {
			return err
		}
		if err := s.walletWriter.Save(ctx, target); err != nil {
			return err
		}
		if err := s.txnWriter.Save(ctx, out); err != nil {
			return err
		}
		if err := s.txnWriter.Save(ctx, in); err != nil {
			return err
		}

		s.cache.ClearCache(ctx, fromWalletID)
		s.cache.ClearCache(ctx, toWalletID)
		s.publishTransaction(ctx, out)
		return nil
	})
	if err != nil {
		if models.IsBusinessError(err) {
			return err
		}
		return s.fallback.HandleTransferFallback(fromWalletID, toWalletID, amount, requestID, err)
	}
	return nil
}

// findWallet loads a wallet or fails with ErrWalletNotFound.
func (s *WalletService) findWallet(ctx context.Context, walletID uuid.UUID) (*models.WalletDB, error) {
	wallet, err := s.walletReader.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, models.ErrWalletNotFound
	}
	return wallet, nil
}

// publishTransaction publishes a committed ledger entry to Kafka. Publishing
// is best-effort and never affects the outcome of the operation.
func (s *WalletService) publishTransaction(ctx context.Context, txn *models.TransactionDB) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "transaction_id", txn.TransactionID)
		return
	}

	event := models.TransactionEvent{
		TransactionID: txn.TransactionID.String(),
		WalletID:      txn.WalletID.String(),
		Amount:        txn.Amount.String(),
		Operation:     txn.Type,
		Timestamp:     txn.CreatedAt.Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal transaction event", "transaction_id", txn.TransactionID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish transaction event", "transaction_id", txn.TransactionID, "error", err)
	} else {
		logger.Log.Infow("transaction event published", "transaction_id", txn.TransactionID, "operation", event.Operation)
	}
}
