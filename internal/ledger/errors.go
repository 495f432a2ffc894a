package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for the operation taxonomy. Timeout and store-unavailable
// are transient and safe to retry with the same dedup key; the rest are not
// retried automatically.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrNotFound           = errors.New("not found")
	ErrTimeout            = errors.New("lock wait timed out")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// InsufficientStockError reports a failed availability check with enough
// detail for the caller to adjust and retry.
type InsufficientStockError struct {
	ItemID       int64 `json:"item_id"`
	DepartmentID int64 `json:"department_id"`
	Requested    int   `json:"requested"`
	Available    int   `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d in department %d: requested %d, available %d",
		e.ItemID, e.DepartmentID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
