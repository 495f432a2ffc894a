package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/medinv/medinv/internal/model"
)

// ListStock returns every stock record with item and department names
// joined, for list views and alert derivation.
func (e *Engine) ListStock(ctx context.Context) ([]model.StockRecord, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT s.item_id, s.department_id, s.quantity, s.reserved, s.min_threshold, s.updated_at,
		        i.name, i.category, i.unit, d.name
		 FROM stock s
		 JOIN items i ON i.id = s.item_id
		 JOIN departments d ON d.id = s.department_id
		 ORDER BY i.name, d.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listing stock: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var records []model.StockRecord
	for rows.Next() {
		var rec model.StockRecord
		if err := rows.Scan(&rec.ItemID, &rec.DepartmentID, &rec.Quantity, &rec.Reserved,
			&rec.MinThreshold, &rec.UpdatedAt,
			&rec.ItemName, &rec.ItemCategory, &rec.Unit, &rec.DepartmentName); err != nil {
			return nil, fmt.Errorf("%w: scanning stock: %v", ErrStoreUnavailable, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListTransactions returns the ledger entries, newest first, with names
// joined for display.
func (e *Engine) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT t.id, t.kind, t.item_id, t.department_id, t.quantity,
		        t.actor_id, t.transfer_id, t.dedup_key, t.status, t.created_at,
		        i.name, d.name, COALESCE(u.username, '')
		 FROM transactions t
		 JOIN items i ON i.id = t.item_id
		 JOIN departments d ON d.id = t.department_id
		 LEFT JOIN users u ON u.id = t.actor_id
		 ORDER BY t.created_at DESC, t.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listing transactions: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var entries []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var dedup sql.NullString
		if err := rows.Scan(&t.ID, &t.Kind, &t.ItemID, &t.DepartmentID, &t.Quantity,
			&t.ActorID, &t.TransferID, &dedup, &t.Status, &t.CreatedAt,
			&t.ItemName, &t.DepartmentName, &t.ActorName); err != nil {
			return nil, fmt.Errorf("%w: scanning transaction: %v", ErrStoreUnavailable, err)
		}
		t.DedupKey = dedup.String
		entries = append(entries, t)
	}
	return entries, rows.Err()
}
