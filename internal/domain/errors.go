package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrRoundNotFound         = fmt.Errorf("IPO round %w", ErrNotFound)
	ErrApplicationNotFound   = fmt.Errorf("application %w", ErrNotFound)
	ErrStockNotFound         = fmt.Errorf("stock %w", ErrNotFound)
	ErrUserNotFound          = fmt.Errorf("user %w", ErrNotFound)
	ErrNotificationNotFound  = fmt.Errorf("notification %w", ErrNotFound)
	ErrAlreadyAllotted       = errors.New("IPO round already allotted")
	ErrRoundNotClosed        = errors.New("IPO round is not closed for allotment")
	ErrRoundNotOpen          = errors.New("IPO round is not open for applications")
	ErrBelowMinimumLot       = errors.New("requested shares below minimum lot size")
	ErrDuplicateApplication  = errors.New("user already applied to this IPO round")
	ErrInvalidRound          = errors.New("invalid IPO round")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrNoPortfolio           = errors.New("user has no portfolio")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrStockNotListed        = errors.New("stock is not listed")
	ErrInvalidAllotmentInput = errors.New("invalid allotment input")
	ErrNotAllotted           = errors.New("application has no allotted shares")
	ErrEmailTaken            = errors.New("email already registered")
	ErrSymbolTaken           = errors.New("symbol already exists")
)

// SettlementFailedError wraps a persistence failure inside the allotment transaction.
// The transaction was rolled back, so settle can be retried.
type SettlementFailedError struct {
	RoundID uuid.UUID
	Cause   error
}

func (e *SettlementFailedError) Error() string {
	return fmt.Sprintf("settlement of round %s failed: %v", e.RoundID, e.Cause)
}

func (e *SettlementFailedError) Unwrap() error {
	return e.Cause
}
