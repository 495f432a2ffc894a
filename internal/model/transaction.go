package model

import "time"

// Transaction kinds.
const (
	TxBookIn      = "book_in"
	TxBookOut     = "book_out"
	TxTransferOut = "transfer_out"
	TxTransferIn  = "transfer_in"
)

// Transaction statuses.
const (
	TxCompleted = "completed"
	TxPending   = "pending"
	TxCancelled = "cancelled"
)

// Transaction is one append-only ledger entry. Rows are never updated once
// completed; corrections are recorded as new compensating transactions.
type Transaction struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"`
	ItemID       int64     `json:"item_id"`
	DepartmentID int64     `json:"department_id"`
	Quantity     int       `json:"quantity"`
	ActorID      *int64    `json:"actor_id,omitempty"`
	TransferID   *int64    `json:"transfer_id,omitempty"`
	DedupKey     string    `json:"dedup_key,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemName       string `json:"item_name,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
	ActorName      string `json:"actor_name,omitempty"`
}

// Delta returns the signed effect of the transaction on on-hand quantity.
func (t Transaction) Delta() int {
	switch t.Kind {
	case TxBookIn, TxTransferIn:
		return t.Quantity
	case TxBookOut, TxTransferOut:
		return -t.Quantity
	}
	return 0
}
