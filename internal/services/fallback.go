package services

import (
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/logger"
	"github.com/sbilibin2017/gw-wallet-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// WalletFallbackHandler converts infrastructure faults during mutating
// operations into a uniform service-unavailable outcome. The triggering
// fault stays in the logs and never reaches the client. Business-rule errors
// must be filtered out before a fault gets here.
type WalletFallbackHandler struct{}

func NewWalletFallbackHandler() *WalletFallbackHandler {
	return &WalletFallbackHandler{}
}

func (h *WalletFallbackHandler) HandleDepositFallback(walletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID, cause error) error {
	logger.Log.Errorw("deposit fallback triggered",
		"wallet_id", walletID,
		"amount", amount,
		"request_id", requestID,
		"cause", cause,
	)
	return models.ErrServiceUnavailable
}

func (h *WalletFallbackHandler) HandleWithdrawFallback(walletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID, cause error) error {
	logger.Log.Errorw("withdraw fallback triggered",
		"wallet_id", walletID,
		"amount", amount,
		"request_id", requestID,
		"cause", cause,
	)
	return models.ErrServiceUnavailable
}

func (h *WalletFallbackHandler) HandleTransferFallback(fromWalletID, toWalletID uuid.UUID, amount decimal.Decimal, requestID uuid.UUID, cause error) error {
	logger.Log.Errorw("transfer fallback triggered",
		"from_wallet_id", fromWalletID,
		"to_wallet_id", toWalletID,
		"amount", amount,
		"request_id", requestID,
		"cause", cause,
	)
	return models.ErrServiceUnavailable
}
