package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/shopspring/decimal"
)

// TransferProcessor defines the interface that the service must implement.
type TransferProcessor interface {
	Transfer(ctx context.Context, fromWalletID, toWalletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID) error
}

// TransferRequest represents the JSON body for transferring funds
// swagger:model TransferRequest
type TransferRequest struct {
	// Source wallet identifier
	// required: true
	FromWalletID uuid.UUID `json:"from_wallet_id"`

	// Target wallet identifier
	// required: true
	ToWalletID uuid.UUID `json:"to_wallet_id"`

	// Amount to transfer
	// required: true
	// default: 20.00
	Amount decimal.Decimal `json:"amount"`

	// Idempotency key for the request
	// required: true
	RequestID uuid.UUID `json:"request_id"`
}

// TransferResponse represents a successful transfer response
// swagger:model TransferResponse
type TransferResponse struct {
	// Success message
	// default: Transfer processed successfully
	Message string `json:"message"`
}

// NewTransferHandler returns an HTTP handler for transferring funds between wallets.
// @Summary Transfer funds
// @Description Moves funds between two wallets as a pair of linked ledger entries. The request_id deduplicates retries.
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body handlers.TransferRequest true "Transfer Request"
// @Success 200 {object} handlers.TransferResponse "Transfer processed successfully"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Failure 409 {object} handlers.ErrorResponse "Duplicate request"
// @Failure 422 {object} handlers.ErrorResponse "Insufficient funds or same wallet"
// @Failure 429 {object} handlers.ErrorResponse "Concurrent request in flight"
// @Failure 503 {object} handlers.ErrorResponse "Service unavailable"
// @Router /wallets/transfer [post]
func NewTransferHandler(svc TransferProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode transfer request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
			return
		}
		if req.FromWalletID == uuid.Nil || req.ToWalletID == uuid.Nil {
			logger.Log.Warnw("transfer request without wallet ids")
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "from_wallet_id and to_wallet_id are required"})
			return
		}
		if req.RequestID == uuid.Nil {
			logger.Log.Warnw("transfer request without request id")
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "request_id is required"})
			return
		}

		if err := svc.Transfer(ctx, req.FromWalletID, req.ToWalletID, req.Amount, req.RequestID); err != nil {
			logger.Log.Errorw("failed to transfer funds", "from_wallet_id", req.FromWalletID, "to_wallet_id", req.ToWalletID, "amount", req.Amount, "request_id", req.RequestID, "error", err)
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TransferResponse{Message: "Transfer processed successfully"})
	}
}
