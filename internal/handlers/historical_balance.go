package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

// HistoricalBalanceGetter defines the interface that the service must implement.
type HistoricalBalanceGetter interface {
	GetHistoricalBalance(ctx context.Context, walletID uuid.UUID, timestamp time.Time) (decimal.Decimal, error)
}

// HistoricalBalanceResponse represents a balance at a past instant
// swagger:model HistoricalBalanceResponse
type HistoricalBalanceResponse struct {
	// Wallet identifier
	WalletID string `json:"wallet_id"`

	// Instant the balance is reported for
	Timestamp time.Time `json:"timestamp"`

	// Balance at that instant
	// default: 100.00
	Balance string `json:"balance"`
}

// NewGetHistoricalBalanceHandler returns an HTTP handler for fetching the
// balance at a past instant.
// @Summary Get historical balance
// @Description Returns the wallet balance as of the given RFC3339 timestamp, reconstructed from the ledger.
// @Tags wallet
// @Produce json
// @Param walletId path string true "Wallet ID"
// @Param timestamp query string true "RFC3339 timestamp"
// @Success 200 {object} handlers.HistoricalBalanceResponse "Balance at the instant"
// @Failure 400 {object} handlers.ErrorResponse "Invalid wallet ID or timestamp"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Router /wallets/{walletId}/balance/historical [get]
func NewGetHistoricalBalanceHandler(svc HistoricalBalanceGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		walletID, err := parseWalletID(r)
		if err != nil {
			logger.Log.Warnw("invalid wallet id", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid wallet ID"})
			return
		}

		raw := r.URL.Query().Get("timestamp")
		if raw == "" {
			logger.Log.Warnw("historical balance request without timestamp", "wallet_id", walletID)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "timestamp is required"})
			return
		}
		timestamp, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			logger.Log.Warnw("invalid timestamp", "timestamp", raw, "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid timestamp"})
			return
		}

		balance, err := svc.GetHistoricalBalance(ctx, walletID, timestamp)
		if err != nil {
			logger.Log.Errorw("failed to get historical balance", "wallet_id", walletID, "timestamp", timestamp, "error", err)
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, HistoricalBalanceResponse{
			WalletID:  walletID.String(),
			Timestamp: timestamp,
			Balance:   balance.String(),
		})
	}
}
