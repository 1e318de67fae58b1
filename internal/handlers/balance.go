package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

// BalanceGetter defines the interface that the service must implement.
type BalanceGetter interface {
	GetBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)
}

// BalanceResponse represents a wallet balance
// swagger:model BalanceResponse
type BalanceResponse struct {
	// Wallet identifier
	WalletID string `json:"wallet_id"`

	// Current balance
	// default: 100.00
	Balance string `json:"balance"`
}

// NewGetBalanceHandler returns an HTTP handler for fetching the current balance.
// @Summary Get balance
// @Description Returns the wallet's current balance, served from cache when available.
// @Tags wallet
// @Produce json
// @Param walletId path string true "Wallet ID"
// @Success 200 {object} handlers.BalanceResponse "Current balance"
// @Failure 400 {object} handlers.ErrorResponse "Invalid wallet ID"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Router /wallets/{walletId}/balance [get]
func NewGetBalanceHandler(svc BalanceGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		walletID, err := parseWalletID(r)
		if err != nil {
			logger.Log.Warnw("invalid wallet id", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid wallet ID"})
			return
		}

		balance, err := svc.GetBalance(ctx, walletID)
		if err != nil {
			logger.Log.Errorw("failed to get balance", "wallet_id", walletID, "error", err)
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BalanceResponse{
			WalletID: walletID.String(),
			Balance:  balance.String(),
		})
	}
}
