package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

// WalletReadRepository handles wallet read operations
type WalletReadRepository struct {
	db *sqlx.DB
}

func NewWalletReadRepository(db *sqlx.DB) *WalletReadRepository {
	return &WalletReadRepository{db: db}
}

// GetByID retrieves a wallet by its identifier. Returns (nil, nil) when the
// wallet does not exist.
func (r *WalletReadRepository) GetByID(ctx context.Context, walletID uuid.UUID) (*models.WalletDB, error) {
	const query = `
		SELECT wallet_id, user_id, balance, status, created_at, updated_at
		FROM wallets
		WHERE wallet_id = $1
	`

	var wallet models.WalletDB
	err := r.db.GetContext(ctx, &wallet, query, walletID)

	logger.Log.Infow("wallet query",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{walletID},
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &wallet, nil
}

// ExistsByUserID reports whether the user already owns a wallet.
func (r *WalletReadRepository) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM wallets WHERE user_id = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID)

	logger.Log.Infow("wallet query",
		"query", query,
		"args", []any{userID},
		"result", exists,
		"error", err,
	)

	return exists, err
}

// WalletWriteRepository handles wallet write operations
type WalletWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewWalletWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *WalletWriteRepository {
	return &WalletWriteRepository{db: db, txGetter: txGetter}
}

// Save performs an UPSERT: creates the wallet if absent, otherwise updates
// balance, status and updated_at. Joins the ambient request transaction when
// one is present in the context.
func (r *WalletWriteRepository) Save(ctx context.Context, wallet *models.WalletDB) error {
	query := `
		INSERT INTO wallets (wallet_id, user_id, balance, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (wallet_id)
		DO UPDATE SET balance = EXCLUDED.balance,
		              status = EXCLUDED.status,
		              updated_at = EXCLUDED.updated_at
	`

	var executor sqlx.ExtContext = r.db
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			executor = tx
		}
	}

	_, err := executor.ExecContext(ctx, query,
		wallet.WalletID, wallet.UserID, wallet.Balance, wallet.Status,
		wallet.CreatedAt, wallet.UpdatedAt,
	)

	logger.Log.Infow("wallet query",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{wallet.WalletID, wallet.UserID, wallet.Balance, wallet.Status},
		"error", err,
	)

	return err
}
