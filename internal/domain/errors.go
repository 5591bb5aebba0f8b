package domain

import (
	"errors"
	"fmt"
)

var (
	ErrWalletNotConnected  = errors.New("wallet not connected")
	ErrUserCancelled       = errors.New("connection cancelled by user")
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrSigning             = errors.New("signing failed")
	ErrSubmission          = errors.New("ledger submission failed")
	ErrLookup              = errors.New("ledger lookup failed")
	ErrNotFound            = errors.New("record not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUploadRejected      = errors.New("upload rejected")
	ErrFlowState           = errors.New("operation not valid in current state")
)

// InsufficientFundsError reports a balance below the minimum submission
// fee, in microalgos, so the caller can tell the user how much is missing.
type InsufficientFundsError struct {
	Balance  uint64
	Required uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %d below required fee %d", e.Balance, e.Required)
}
