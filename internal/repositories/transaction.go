package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// TransactionWriteRepository appends ledger entries. The ledger is
// append-only: there is no update or delete path.
type TransactionWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewTransactionWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts one ledger entry. Joins the ambient request transaction when
// one is present in the context.
func (r *TransactionWriteRepository) Save(ctx context.Context, txn *models.TransactionDB) error {
	query := `
		INSERT INTO transactions (transaction_id, wallet_id, amount, type, created_at, related_transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var executor sqlx.ExtContext = r.db
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			executor = tx
		}
	}

	_, err := executor.ExecContext(ctx, query,
		txn.TransactionID, txn.WalletID, txn.Amount, txn.Type,
		txn.CreatedAt, txn.RelatedTransactionID,
	)

	logger.Log.Infow("transaction query",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{txn.TransactionID, txn.WalletID, txn.Amount, txn.Type},
		"error", err,
	)

	return err
}

// TransactionReadRepository handles ledger read operations
type TransactionReadRepository struct {
	db *sqlx.DB
}

func NewTransactionReadRepository(db *sqlx.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// GetByWalletAndPeriod returns the wallet's ledger entries with
// created_at inside [start, end], oldest first.
func (r *TransactionReadRepository) GetByWalletAndPeriod(ctx context.Context, walletID uuid.UUID, start, end time.Time) ([]models.TransactionDB, error) {
	const query = `
		SELECT transaction_id, wallet_id, amount, type, created_at, related_transaction_id
		FROM transactions
		WHERE wallet_id = $1
		  AND created_at >= $2
		  AND created_at <= $3
		ORDER BY created_at
	`

	var txns []models.TransactionDB
	err := r.db.SelectContext(ctx, &txns, query, walletID, start, end)

	logger.Log.Infow("transaction query",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{walletID, start, end},
		"result_count", len(txns),
		"error", err,
	)

	return txns, err
}

// SumSignedAmountsUpTo returns the signed sum of the wallet's ledger entries
// with created_at <= timestamp. This is the canonical historical balance
// definition: zero for a timestamp before the first entry.
func (r *TransactionReadRepository) SumSignedAmountsUpTo(ctx context.Context, walletID uuid.UUID, timestamp time.Time) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE wallet_id = $1
		  AND created_at <= $2
	`

	var sum decimal.Decimal
	err := r.db.GetContext(ctx, &sum, query, walletID, timestamp)

	logger.Log.Infow("transaction query",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{walletID, timestamp},
		"result", sum,
		"error", err,
	)

	if err != nil {
		return decimal.Zero, err
	}

	return sum, nil
}
