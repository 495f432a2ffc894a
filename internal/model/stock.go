package model

import "time"

// StockRecord is the current on-hand state for one item in one department.
// Reserved counts stock committed to pending outbound transfers; it is part
// of Quantity, never in addition to it.
type StockRecord struct {
	ItemID       int64     `json:"item_id"`
	DepartmentID int64     `json:"department_id"`
	Quantity     int       `json:"quantity"`
	Reserved     int       `json:"reserved"`
	MinThreshold int       `json:"min_threshold"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ItemName       string `json:"item_name,omitempty"`
	ItemCategory   string `json:"item_category,omitempty"`
	Unit           string `json:"unit,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
}

// Available returns the portion of stock free to book out or reserve.
func (s StockRecord) Available() int { return s.Quantity - s.Reserved }

// Stock statuses derived from available quantity vs threshold.
const (
	StockInStock    = "in_stock"
	StockLow        = "low"
	StockCritical   = "critical"
	StockOutOfStock = "out_of_stock"
)
