package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet statuses
const (
	WalletStatusActive   = "active"
	WalletStatusInactive = "inactive"
)

// WalletDB represents a wallet row in the database. The balance always equals
// the signed sum of the wallet's ledger entries at the moment of last mutation.
type WalletDB struct {
	WalletID  uuid.UUID       `json:"wallet_id" db:"wallet_id"`   // Unique wallet identifier
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`       // Identifier of the wallet's owner
	Balance   decimal.Decimal `json:"balance" db:"balance"`       // Current balance, NUMERIC in DB, never negative
	Status    string          `json:"status" db:"status"`         // active or inactive
	CreatedAt time.Time       `json:"created_at" db:"created_at"` // Timestamp when the wallet was created
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"` // Timestamp of the last wallet update
}

// NewWallet creates an active wallet with zero balance for the given user.
func NewWallet(userID uuid.UUID) *WalletDB {
	now := time.Now()
	return &WalletDB{
		WalletID:  uuid.New(),
		UserID:    userID,
		Balance:   decimal.Zero,
		Status:    WalletStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Deposit increases the balance by amount and returns the ledger entry for
// the movement. Amount must be positive.
func (w *WalletDB) Deposit(amount decimal.Decimal) (*TransactionDB, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = now

	return &TransactionDB{
		TransactionID: uuid.New(),
		WalletID:      w.WalletID,
		Amount:        amount,
		Type:          TransactionDeposit,
		CreatedAt:     now,
	}, nil
}

// Withdraw decreases the balance by amount and returns the ledger entry for
// the movement. Amount must be positive and not exceed the balance.
func (w *WalletDB) Withdraw(amount decimal.Decimal) (*TransactionDB, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if w.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	now := time.Now()
	w.Balance = w.Balance.Sub(amount)
	w.UpdatedAt = now

	return &TransactionDB{
		TransactionID: uuid.New(),
		WalletID:      w.WalletID,
		Amount:        amount.Neg(),
		Type:          TransactionWithdrawal,
		CreatedAt:     now,
	}, nil
}

// Transfer moves amount from source to target and returns the two linked
// ledger entries (out leg first). Balances change by exactly amount on each
// side; the legs reference each other through RelatedTransactionID.
func Transfer(source, target *WalletDB, amount decimal.Decimal) (*TransactionDB, *TransactionDB, error) {
	if source.WalletID == target.WalletID {
		return nil, nil, ErrSameWalletTransfer
	}
	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	if source.Balance.LessThan(amount) {
		return nil, nil, ErrInsufficientFunds
	}

	now := time.Now()
	source.Balance = source.Balance.Sub(amount)
	source.UpdatedAt = now
	target.Balance = target.Balance.Add(amount)
	target.UpdatedAt = now

	out := &TransactionDB{
		TransactionID: uuid.New(),
		WalletID:      source.WalletID,
		Amount:        amount.Neg(),
		Type:          TransactionTransferOut,
		CreatedAt:     now,
	}
	in := &TransactionDB{
		TransactionID: uuid.New(),
		WalletID:      target.WalletID,
		Amount:        amount,
		Type:          TransactionTransferIn,
		CreatedAt:     now,
	}

	if err := out.LinkRelated(in.TransactionID); err != nil {
		return nil, nil, err
	}
	if err := in.LinkRelated(out.TransactionID); err != nil {
		return nil, nil, err
	}

	return out, in, nil
}

// Activate marks the wallet active.
func (w *WalletDB) Activate() {
	w.Status = WalletStatusActive
	w.UpdatedAt = time.Now()
}

// Deactivate marks the wallet inactive.
func (w *WalletDB) Deactivate() {
	w.Status = WalletStatusInactive
	w.UpdatedAt = time.Now()
}
