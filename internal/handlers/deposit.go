package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

// DepositProcessor defines the interface that the service must implement.
type DepositProcessor interface {
	Deposit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID) error
}

// DepositRequest represents the JSON body for depositing funds
// swagger:model DepositRequest
type DepositRequest struct {
	// Amount to deposit
	// required: true
	// default: 100.00
	Amount decimal.Decimal `json:"amount"`

	// Idempotency key for the request
	// required: true
	RequestID uuid.UUID `json:"request_id"`
}

// DepositResponse represents a successful deposit response
// swagger:model DepositResponse
type DepositResponse struct {
	// Success message
	// default: Deposit processed successfully
	Message string `json:"message"`
}

// NewDepositHandler returns an HTTP handler for depositing funds into a wallet.
// @Summary Deposit funds
// @Description Adds funds to the wallet. The request_id deduplicates retries of the same request.
// @Tags wallet
// @Accept json
// @Produce json
// @Param walletId path string true "Wallet ID"
// @Param request body handlers.DepositRequest true "Deposit Request"
// @Success 200 {object} handlers.DepositResponse "Deposit processed successfully"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Failure 409 {object} handlers.ErrorResponse "Duplicate request"
// @Failure 429 {object} handlers.ErrorResponse "Concurrent request in flight"
// @Failure 503 {object} handlers.ErrorResponse "Service unavailable"
// @Router /wallets/{walletId}/deposit [post]
func NewDepositHandler(svc DepositProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		walletID, err := parseWalletID(r)
		if err != nil {
			logger.Log.Warnw("invalid wallet id", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid wallet ID"})
			return
		}

		var req DepositRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode deposit request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}
		if req.RequestID == uuid.Nil {
			logger.Log.Warnw("deposit request without request id", "wallet_id", walletID)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "request_id is required"})
			return
		}

		if err := svc.Deposit(ctx, walletID, req.Amount, req.RequestID); err != nil {
			logger.Log.Errorw("failed to deposit funds", "wallet_id", walletID, "amount", req.Amount, "request_id", req.RequestID, "error", err)
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, DepositResponse{Message: "Deposit processed successfully"})
	}
}
