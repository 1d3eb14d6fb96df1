package currency

import "errors"

var (
	ErrInvalidSignature  = errors.New("verify signature failed")
	ErrNonPositiveAmount = errors.New("transfer amount must be positive")
	ErrUnknownTxType     = errors.New("unknown transaction type")
	ErrTxAlreadyPending  = errors.New("transaction is already pending")

	ErrWalletExists      = errors.New("wallet already exists for this address")
	ErrSenderUnknown     = errors.New("sender wallet doesn't exist")
	ErrReceiverUnknown   = errors.New("receiver wallet doesn't exist")
	ErrInsufficientFunds = errors.New("insufficient balance on sender wallet")
	ErrBalanceOverflow   = errors.New("receiver balance would overflow")

	ErrWalletNotFound = errors.New("wallet not found")
)

// isRejection reports whether err is a per-transaction validation
// failure. Anything else coming out of a handler is a store fault and
// must stop block application.
func isRejection(err error) bool {
	switch err {
	case ErrWalletExists, ErrSenderUnknown, ErrReceiverUnknown,
		ErrInsufficientFunds, ErrBalanceOverflow, ErrNonPositiveAmount,
		ErrUnknownTxType:
		return true
	}
	return false
}
