package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
)

// WalletCreator defines the interface that the service must implement.
type WalletCreator interface {
	CreateWallet(ctx context.Context, userID uuid.UUID) (*models.WalletDB, error)
}

// CreateWalletRequest represents the JSON body for creating a wallet
// swagger:model CreateWalletRequest
type CreateWalletRequest struct {
	// Owning user identifier
	// required: true
	UserID uuid.UUID `json:"user_id"`
}

// NewCreateWalletHandler returns an HTTP handler for creating a wallet.
// @Summary Create wallet
// @Description Creates an active zero-balance wallet for the user. Each user may own at most one wallet.
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body handlers.CreateWalletRequest true "Create Wallet Request"
// @Success 201 {object} handlers.WalletResponse "Wallet created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request body"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 422 {object} handlers.ErrorResponse "User already has a wallet"
// @Router /wallets [post]
func NewCreateWalletHandler(svc WalletCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req CreateWalletRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode create wallet request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}
		if req.UserID == uuid.Nil {
			logger.Log.Warnw("create wallet request without user id")
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
			return
		}

		wallet, err := svc.CreateWallet(ctx, req.UserID)
		if err != nil {
			logger.Log.Errorw("failed to create wallet", "user_id", req.UserID, "error", err)
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newWalletResponse(wallet))
	}
}
