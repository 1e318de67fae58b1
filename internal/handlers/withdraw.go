package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

// WithdrawProcessor defines the interface that the service must implement.
type WithdrawProcessor interface {
	Withdraw(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID) error
}

// WithdrawRequest represents the JSON body for withdrawing funds
// swagger:model WithdrawRequest
type WithdrawRequest struct {
	// Amount to withdraw
	// required: true
	// default: 50.00
	Amount decimal.Decimal `json:"amount"`

	// Idempotency key for the request
	// required: true
	RequestID uuid.UUID `json:"request_id"`
}

// WithdrawResponse represents a successful withdrawal response
// swagger:model WithdrawResponse
type WithdrawResponse struct {
	// Success message
	// default: Withdrawal processed successfully
	Message string `json:"message"`
}

// NewWithdrawHandler returns an HTTP handler for withdrawing funds from a wallet.
// @Summary Withdraw funds
// @Description Removes funds from the wallet if the balance covers the amount. The request_id deduplicates retries.
// @Tags wallet
// @Accept json
// @Produce json
// @Param walletId path string true "Wallet ID"
// @Param request body handlers.WithdrawRequest true "Withdraw Request"
// @Success 200 {object} handlers.WithdrawResponse "Withdrawal processed successfully"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Failure 409 {object} handlers.ErrorResponse "Duplicate request"
// @Failure 422 {object} handlers.ErrorResponse "Insufficient funds"
// @Failure 429 {object} handlers.ErrorResponse "Concurrent request in flight"
// @Failure 503 {object} handlers.ErrorResponse "Service unavailable"
// @Router /wallets/{walletId}/withdraw [post]
func NewWithdrawHandler(svc WithdrawProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		walletID, err := parseWalletID(r)
		if err != nil {
			logger.Log.Warnw("invalid wallet id", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid wallet ID"})
			return
		}

		var req WithdrawRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode withdraw request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}
		if req.RequestID == uuid.Nil {
			logger.Log.Warnw("withdraw request without request id", "wallet_id", walletID)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "request_id is required"})
			return
		}

		if err := svc.Withdraw(ctx, walletID, req.Amount, req.RequestID); err != nil {
			logger.Log.Errorw("failed to withdraw funds", "wallet_id", walletID, "amount", req.Amount, "request_id", req.RequestID, "error", err)
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, WithdrawResponse{Message: "Withdrawal processed successfully"})
	}
}
