package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medinv/medinv/internal/model"
)

// replayState computes what every stock record should hold according to the
// transaction log (completed entries, in seq order) plus the reservations of
// still-pending transfers. Replay is idempotent: each entry carries its net
// delta.
func (e *Engine) replayState(ctx context.Context) (map[stockKey]model.StockRecord, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT kind, item_id, department_id, quantity
		 FROM transactions WHERE status = ?
		 ORDER BY created_at, id`,
		model.TxCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: reading transaction log: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	state := make(map[stockKey]model.StockRecord)
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.Kind, &t.ItemID, &t.DepartmentID, &t.Quantity); err != nil {
			return nil, fmt.Errorf("%w: scanning transaction: %v", ErrStoreUnavailable, err)
		}
		key := stockKey{t.ItemID, t.DepartmentID}
		rec := state[key]
		rec.ItemID = t.ItemID
		rec.DepartmentID = t.DepartmentID
		rec.Quantity += t.Delta()
		if rec.Quantity < 0 {
			return nil, fmt.Errorf("%w: replay drives stock (%d, %d) negative",
				ErrInvariantViolation, t.ItemID, t.DepartmentID)
		}
		state[key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading transaction log: %v", ErrStoreUnavailable, err)
	}

	// Reservations are not ledger events; they are reconstructed from the
	// pending transfers that hold them.
	reserved, err := e.pendingReservations(ctx)
	if err != nil {
		return nil, err
	}
	for key, sum := range reserved {
		rec := state[key]
		rec.ItemID = key.ItemID
		rec.DepartmentID = key.DepartmentID
		rec.Reserved = sum
		if rec.Reserved > rec.Quantity {
			return nil, fmt.Errorf("%w: replay drives reserved above quantity for (%d, %d)",
				ErrInvariantViolation, key.ItemID, key.DepartmentID)
		}
		state[key] = rec
	}

	return state, nil
}

// Rebuild replaces the stock table with the state replayed from the log.
// This is the crash-recovery procedure; thresholds are preserved. It must
// only run while no other operations are in flight.
func (e *Engine) Rebuild(ctx context.Context) error {
	state, err := e.replayState(ctx)
	if err != nil {
		return err
	}

	tx, err := e.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE stock SET quantity = 0, reserved = 0`); err != nil {
		return fmt.Errorf("%w: clearing stock: %v", ErrStoreUnavailable, err)
	}
	for key, rec := range state {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO stock (item_id, department_id, quantity, reserved, updated_at)
			 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (item_id, department_id) DO UPDATE
			 SET quantity = ?, reserved = ?, updated_at = CURRENT_TIMESTAMP`,
			key.ItemID, key.DepartmentID, rec.Quantity, rec.Reserved, rec.Quantity, rec.Reserved,
		)
		if err != nil {
			return fmt.Errorf("%w: rebuilding stock: %v", ErrStoreUnavailable, err)
		}
	}

	return commit(tx)
}

// Reconcile compares the live stock table against a replay of the log and
// reports the number of mismatching records. Mismatches indicate a bug or
// corruption and are logged individually.
func (e *Engine) Reconcile(ctx context.Context) (int, error) {
	state, err := e.replayState(ctx)
	if err != nil {
		return 0, err
	}

	current, err := e.ListStock(ctx)
	if err != nil {
		return 0, err
	}

	mismatches := 0
	seen := make(map[stockKey]bool, len(current))
	for _, rec := range current {
		key := stockKey{rec.ItemID, rec.DepartmentID}
		seen[key] = true
		want := state[key]
		if rec.Quantity != want.Quantity || rec.Reserved != want.Reserved {
			mismatches++
			slog.Error("stock record diverges from ledger replay",
				"item", rec.ItemID, "department", rec.DepartmentID,
				"quantity", rec.Quantity, "reserved", rec.Reserved,
				"replayed_quantity", want.Quantity, "replayed_reserved", want.Reserved)
		}
	}
	for key, want := range state {
		if !seen[key] && (want.Quantity != 0 || want.Reserved != 0) {
			mismatches++
			slog.Error("ledger replay has stock missing from the current table",
				"item", key.ItemID, "department", key.DepartmentID,
				"replayed_quantity", want.Quantity, "replayed_reserved", want.Reserved)
		}
	}

	return mismatches, nil
}
