package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types. A transaction is one signed ledger movement: inflows
// (deposit, transfer_in) carry a positive amount, outflows (withdrawal,
// transfer_out) a negative one.
const (
	TransactionDeposit     = "deposit"
	TransactionWithdrawal  = "withdrawal"
	TransactionTransferIn  = "transfer_in"
	TransactionTransferOut = "transfer_out"
)

// TransactionDB represents an immutable ledger entry. Rows are only ever
// appended; the related-transaction link is set exactly once, before the row
// is persisted, and only for transfer legs.
type TransactionDB struct {
	TransactionID        uuid.UUID       `json:"transaction_id" db:"transaction_id"`                           // Unique transaction identifier
	WalletID             uuid.UUID       `json:"wallet_id" db:"wallet_id"`                                     // Wallet this movement belongs to
	Amount               decimal.Decimal `json:"amount" db:"amount"`                                           // Signed amount: positive inflow, negative outflow
	Type                 string          `json:"type" db:"type"`                                               // One of the Transaction* constants
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`                                   // Creation timestamp
	RelatedTransactionID *uuid.UUID      `json:"related_transaction_id,omitempty" db:"related_transaction_id"` // Counterpart leg of a transfer
}

// IsTransfer reports whether the transaction is one leg of a transfer.
func (t *TransactionDB) IsTransfer() bool {
	return t.Type == TransactionTransferIn || t.Type == TransactionTransferOut
}

// LinkRelated pairs a transfer leg with its counterpart. Linking a
// non-transfer transaction, or linking twice, is a contract violation.
func (t *TransactionDB) LinkRelated(relatedID uuid.UUID) error {
	if !t.IsTransfer() {
		return ErrNotTransferTransaction
	}
	if t.RelatedTransactionID != nil {
		return ErrAlreadyLinked
	}
	t.RelatedTransactionID = &relatedID
	return nil
}

// SignedAmount returns the amount with its ledger sign applied. Amounts are
// stored signed, so this is the stored value.
func (t *TransactionDB) SignedAmount() decimal.Decimal {
	return t.Amount
}

// TransactionEvent is the message published to Kafka after a transaction is
// committed.
type TransactionEvent struct {
	TransactionID string `json:"transaction_id"` // Unique identifier of the ledger entry
	WalletID      string `json:"wallet_id"`      // Wallet the movement belongs to
	Amount        string `json:"amount"`         // Signed decimal amount as string
	Operation     string `json:"operation"`      // Transaction type
	Timestamp     int64  `json:"timestamp"`      // Unix timestamp (seconds) of the movement
}
