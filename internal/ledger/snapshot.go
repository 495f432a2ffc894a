package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/medinv/medinv/internal/alerts"
	"github.com/medinv/medinv/internal/model"
)

// Snapshot carries the dashboard summary tiles, computed as aggregates over
// the current stock table and a recent window of the transaction log.
type Snapshot struct {
	TotalItems         int       `json:"total_items"`
	TotalQuantity      int       `json:"total_quantity"`
	LowStock           int       `json:"low_stock"`
	OutOfStock         int       `json:"out_of_stock"`
	PendingTransfers   int       `json:"pending_transfers"`
	RecentTransactions int       `json:"recent_transactions"`
	TakenAt            time.Time `json:"taken_at"`
}

// Snapshot computes the read-only aggregate feed. criticalFraction is the
// alert policy constant; window bounds the recent-transaction count.
func (e *Engine) Snapshot(ctx context.Context, window time.Duration, criticalFraction float64) (*Snapshot, error) {
	snap := &Snapshot{TakenAt: time.Now().UTC()}

	err := e.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE deleted_at IS NULL`,
	).Scan(&snap.TotalItems)
	if err != nil {
		return nil, fmt.Errorf("%w: counting items: %v", ErrStoreUnavailable, err)
	}

	records, err := e.ListStock(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		snap.TotalQuantity += rec.Quantity
		switch alerts.Status(rec, criticalFraction) {
		case model.StockOutOfStock:
			snap.OutOfStock++
		case model.StockLow, model.StockCritical:
			snap.LowStock++
		}
	}

	err = e.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transfers WHERE status = ?`, model.TransferPending,
	).Scan(&snap.PendingTransfers)
	if err != nil {
		return nil, fmt.Errorf("%w: counting pending transfers: %v", ErrStoreUnavailable, err)
	}

	// Stored timestamps use SQLite's CURRENT_TIMESTAMP format, so the bound
	// must be rendered the same way for the comparison to hold.
	since := time.Now().Add(-window).UTC().Format("2006-01-02 15:04:05")
	err = e.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE created_at >= ?`, since,
	).Scan(&snap.RecentTransactions)
	if err != nil {
		return nil, fmt.Errorf("%w: counting recent transactions: %v", ErrStoreUnavailable, err)
	}

	return snap, nil
}
