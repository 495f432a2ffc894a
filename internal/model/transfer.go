package model

import "time"

// Transfer statuses. Approved and rejected are terminal.
const (
	TransferPending  = "pending"
	TransferApproved = "approved"
	TransferRejected = "rejected"
)

// TransferLine is one (item, quantity) pair within a transfer request.
type TransferLine struct {
	ItemID   int64  `json:"item_id"`
	Quantity int    `json:"quantity"`
	ItemName string `json:"item_name,omitempty"`
}

// Transfer represents a stock movement request between two departments.
// While pending, the line quantities are held as reservations on the source
// department's stock records.
type Transfer struct {
	ID          int64          `json:"id"`
	SourceID    int64          `json:"source_department_id"`
	DestID      int64          `json:"destination_department_id"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority,omitempty"` // opaque metadata, no scheduling effect
	RequestedBy *int64         `json:"requested_by,omitempty"`
	RequestedAt time.Time      `json:"requested_at"`
	ResolvedBy  *int64         `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	Lines       []TransferLine `json:"lines,omitempty"`

	// Joined fields (not always populated).
	SourceName string `json:"source_name,omitempty"`
	DestName   string `json:"destination_name,omitempty"`
}
