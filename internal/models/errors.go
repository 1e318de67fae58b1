package models

import "errors"

// Error taxonomy shared by the service and handler layers.
// Business errors propagate to the caller verbatim; anything else is
// converted to ErrServiceUnavailable at the service boundary.
var (
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrWalletNotFound is returned when the referenced wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrUserAlreadyHasWallet is returned when a user tries to create a second wallet.
	ErrUserAlreadyHasWallet = errors.New("user already has a wallet")

	// ErrInvalidAmount is returned when a non-positive amount is supplied.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds is returned when a withdrawal or transfer exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameWalletTransfer is returned when source and target wallets are identical.
	ErrSameWalletTransfer = errors.New("cannot transfer to the same wallet")

	// ErrInvalidRange is returned when a period query starts after it ends.
	ErrInvalidRange = errors.New("start date must be before end date")

	// ErrDuplicateRequest is returned when the request id was already processed.
	ErrDuplicateRequest = errors.New("duplicate request")

	// ErrConcurrentRequest is returned when the request id is locked by an
	// in-flight execution.
	ErrConcurrentRequest = errors.New("concurrent request in progress")

	// ErrServiceUnavailable is the uniform degradation error for infrastructure
	// faults during a mutating operation.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrNotTransferTransaction is returned when linking is attempted on a
	// non-transfer transaction.
	ErrNotTransferTransaction = errors.New("only transfer transactions can be linked")

	// ErrAlreadyLinked is returned when a transfer transaction is linked twice.
	ErrAlreadyLinked = errors.New("transaction is already linked")
)

// IsBusinessError reports whether err belongs to the business-rule part of the
// taxonomy, i.e. must reach the caller unchanged and never be retried or
// converted to ErrServiceUnavailable.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrUserNotFound,
		ErrWalletNotFound,
		ErrUserAlreadyHasWallet,
		ErrInvalidAmount,
		ErrInsufficientFunds,
		ErrSameWalletTransfer,
		ErrInvalidRange,
		ErrDuplicateRequest,
		ErrConcurrentRequest,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
