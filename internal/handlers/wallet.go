package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

// WalletGetter defines the interface that the service must implement.
type WalletGetter interface {
	GetWallet(ctx context.Context, walletID uuid.UUID) (*models.WalletDB, error)
}

// WalletResponse represents a wallet
// swagger:model WalletResponse
type WalletResponse struct {
	// Wallet identifier
	WalletID string `json:"wallet_id"`

	// Owning user identifier
	UserID string `json:"user_id"`

	// Current balance
	// default: 100.00
	Balance string `json:"balance"`

	// Wallet status
	// default: active
	Status string `json:"status"`

	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`

	// Last update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

func newWalletResponse(wallet *models.WalletDB) WalletResponse {
	return WalletResponse{
		WalletID:  wallet.WalletID.String(),
		UserID:    wallet.UserID.String(),
		Balance:   wallet.Balance.String(),
		Status:    wallet.Status,
		CreatedAt: wallet.CreatedAt,
		UpdatedAt: wallet.UpdatedAt,
	}
}

// NewGetWalletHandler returns an HTTP handler for fetching a wallet.
// @Summary Get wallet
// @Description Returns the wallet with its current balance and status.
// @Tags wallet
// @Produce json
// @Param walletId path string true "Wallet ID"
// @Success 200 {object} handlers.WalletResponse "Wallet"
// @Failure 400 {object} handlers.ErrorResponse "Invalid wallet ID"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Router /wallets/{walletId} [get]
func NewGetWalletHandler(svc WalletGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		walletID, err := parseWalletID(r)
		if err != nil {
			logger.Log.Warnw("invalid wallet id", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid wallet ID"})
			return
		}

		wallet, err := svc.GetWallet(ctx, walletID)
		if err != nil {
			logger.Log.Errorw("failed to get wallet", "wallet_id", walletID, "error", err)
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newWalletResponse(wallet))
	}
}
