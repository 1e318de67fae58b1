package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

// TransactionLister defines the interface that the service must implement.
type TransactionLister interface {
	GetTransactions(ctx context.Context, walletID uuid.UUID, start, end *time.Time) ([]models.TransactionDB, error)
}

// TransactionResponse represents a ledger entry
// swagger:model TransactionResponse
type TransactionResponse struct {
	// Transaction identifier
	TransactionID string `json:"transaction_id"`

	// Wallet identifier
	WalletID string `json:"wallet_id"`

	// Signed amount: positive for inflows, negative for outflows
	// default: 100.00
	Amount string `json:"amount"`

	// Transaction type
	// default: deposit
	Type string `json:"type"`

	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`

	// Identifier of the opposite transfer leg, when applicable
	RelatedTransactionID *string `json:"related_transaction_id,omitempty"`
}

// TransactionsResponse represents a wallet's ledger entries for a period
// swagger:model TransactionsResponse
type TransactionsResponse struct {
	// Ledger entries ordered by creation time
	Transactions []TransactionResponse `json:"transactions"`
}

func newTransactionsResponse(txns []models.TransactionDB) TransactionsResponse {
	resp := TransactionsResponse{Transactions: make([]TransactionResponse, 0, len(txns))}
	for _, txn := range txns {
		item := TransactionResponse{
			TransactionID: txn.TransactionID.String(),
			WalletID:      txn.WalletID.String(),
			Amount:        txn.Amount.String(),
			Type:          txn.Type,
			CreatedAt:     txn.CreatedAt,
		}
		if txn.RelatedTransactionID != nil {
			related := txn.RelatedTransactionID.String()
			item.RelatedTransactionID = &related
		}
		resp.Transactions = append(resp.Transactions, item)
	}
	return resp
}

// NewGetTransactionsHandler returns an HTTP handler for listing ledger entries.
// @Summary List transactions
// @Description Returns the wallet's ledger entries within the optional [start, end] period. Omitted bounds default to the epoch and now.
// @Tags wallet
// @Produce json
// @Param walletId path string true "Wallet ID"
// @Param start query string false "RFC3339 period start"
// @Param end query string false "RFC3339 period end"
// @Success 200 {object} handlers.TransactionsResponse "Ledger entries"
// @Failure 400 {object} handlers.ErrorResponse "Invalid wallet ID or period"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Router /wallets/{walletId}/transactions [get]
func NewGetTransactionsHandler(svc TransactionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		walletID, err := parseWalletID(r)
		if err != nil {
			logger.Log.Warnw("invalid wallet id", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid wallet ID"})
			return
		}

		var start, end *time.Time
		if raw := r.URL.Query().Get("start"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				logger.Log.Warnw("invalid period start", "start", raw, "error", err)
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid period start"})
				return
			}
			start = &parsed
		}
		if raw := r.URL.Query().Get("end"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				logger.Log.Warnw("invalid period end", "end", raw, "error", err)
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid period end"})
				return
			}
			end = &parsed
		}

		txns, err := svc.GetTransactions(ctx, walletID, start, end)
		if err != nil {
			logger.Log.Errorw("failed to list transactions", "wallet_id", walletID, "error", err)
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newTransactionsResponse(txns))
	}
}
