package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/medinv/medinv/internal/model"
)

// RequestTransfer validates the request and places a reservation on each
// source stock record, all-or-nothing: if any line cannot be reserved the
// whole request fails and no reservation is left behind. On-hand quantities
// do not change until the transfer is approved.
func (e *Engine) RequestTransfer(ctx context.Context, sourceDept, destDept int64, lines []model.TransferLine, priority string, actor *int64) (*model.Transfer, error) {
	if sourceDept <= 0 || destDept <= 0 {
		return nil, invalidInput("source and destination departments are required")
	}
	if sourceDept == destDept {
		return nil, invalidInput("cannot transfer within the same department")
	}
	if len(lines) == 0 {
		return nil, invalidInput("at least one line is required")
	}
	seen := make(map[int64]bool, len(lines))
	keys := make([]stockKey, 0, len(lines))
	for _, line := range lines {
		if line.ItemID <= 0 {
			return nil, invalidInput("line item is required")
		}
		if line.Quantity <= 0 {
			return nil, invalidInput("line quantity must be positive")
		}
		if seen[line.ItemID] {
			return nil, invalidInput("duplicate line for item %d", line.ItemID)
		}
		seen[line.ItemID] = true
		keys = append(keys, stockKey{line.ItemID, sourceDept})
	}

	release, err := e.locks.acquire(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Availability is re-checked under the locks; a rollback on any line
	// failure undoes every reservation made so far.
	for _, line := range lines {
		rec, err := getStock(ctx, tx, line.ItemID, sourceDept)
		if err != nil {
			return nil, err
		}
		if line.Quantity > rec.Available() {
			return nil, &InsufficientStockError{
				ItemID:       line.ItemID,
				DepartmentID: sourceDept,
				Requested:    line.Quantity,
				Available:    rec.Available(),
			}
		}
		if _, err := applyDelta(ctx, tx, line.ItemID, sourceDept, 0, line.Quantity); err != nil {
			return nil, err
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO transfers (source_department_id, destination_department_id, status, priority, requested_by)
		 VALUES (?, ?, ?, ?, ?)`,
		sourceDept, destDept, model.TransferPending, priority, actor,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating transfer: %v", ErrStoreUnavailable, err)
	}
	transferID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%w: reading transfer id: %v", ErrStoreUnavailable, err)
	}

	for i, line := range lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transfer_lines (transfer_id, line_no, item_id, quantity) VALUES (?, ?, ?, ?)`,
			transferID, i+1, line.ItemID, line.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: creating transfer line: %v", ErrStoreUnavailable, err)
		}
	}

	if err := commit(tx); err != nil {
		return nil, err
	}
	return e.GetTransfer(ctx, transferID)
}

// ApproveTransfer consumes the reservation: each line's quantity and
// reservation are removed from the source, added to the destination, and a
// linked pair of completed transfer-out/transfer-in transactions is written.
// Only pending transfers can be approved.
func (e *Engine) ApproveTransfer(ctx context.Context, transferID int64, actor *int64) (*model.Transfer, error) {
	return e.resolveTransfer(ctx, transferID, model.TransferApproved, actor)
}

// RejectTransfer releases the reservation without touching on-hand
// quantities. Only pending transfers can be rejected.
func (e *Engine) RejectTransfer(ctx context.Context, transferID int64, actor *int64) (*model.Transfer, error) {
	return e.resolveTransfer(ctx, transferID, model.TransferRejected, actor)
}

func (e *Engine) resolveTransfer(ctx context.Context, transferID int64, outcome string, actor *int64) (*model.Transfer, error) {
	if transferID <= 0 {
		return nil, invalidInput("transfer id is required")
	}

	// Lines and endpoints are immutable after creation, so they can be read
	// before locking; the status transition itself is re-checked under the
	// locks.
	transfer, err := e.GetTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}

	keys := make([]stockKey, 0, 2*len(transfer.Lines))
	for _, line := range transfer.Lines {
		keys = append(keys, stockKey{line.ItemID, transfer.SourceID})
		if outcome == model.TransferApproved {
			keys = append(keys, stockKey{line.ItemID, transfer.DestID})
		}
	}

	release, err := e.locks.acquire(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM transfers WHERE id = ?`, transferID,
	).Scan(&status)
	if err != nil {
		return nil, fmt.Errorf("%w: reading transfer status: %v", ErrStoreUnavailable, err)
	}
	if status != model.TransferPending {
		return nil, fmt.Errorf("%w: transfer %d is %s", ErrInvalidState, transferID, status)
	}

	for _, line := range transfer.Lines {
		switch outcome {
		case model.TransferApproved:
			if _, err := applyDelta(ctx, tx, line.ItemID, transfer.SourceID, -line.Quantity, -line.Quantity); err != nil {
				return nil, err
			}
			if _, err := applyDelta(ctx, tx, line.ItemID, transfer.DestID, line.Quantity, 0); err != nil {
				return nil, err
			}

			out := model.Transaction{
				Kind:         model.TxTransferOut,
				ItemID:       line.ItemID,
				DepartmentID: transfer.SourceID,
				Quantity:     line.Quantity,
				ActorID:      actor,
				TransferID:   &transferID,
				Status:       model.TxCompleted,
			}
			if _, err := appendTransaction(ctx, tx, out); err != nil {
				return nil, err
			}
			in := out
			in.Kind = model.TxTransferIn
			in.DepartmentID = transfer.DestID
			if _, err := appendTransaction(ctx, tx, in); err != nil {
				return nil, err
			}
		case model.TransferRejected:
			if _, err := applyDelta(ctx, tx, line.ItemID, transfer.SourceID, 0, -line.Quantity); err != nil {
				return nil, err
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE transfers SET status = ?, resolved_by = ?, resolved_at = CURRENT_TIMESTAMP WHERE id = ?`,
		outcome, actor, transferID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving transfer: %v", ErrStoreUnavailable, err)
	}

	if err := commit(tx); err != nil {
		return nil, err
	}
	return e.GetTransfer(ctx, transferID)
}

// GetTransfer returns a transfer with its lines and joined department names.
func (e *Engine) GetTransfer(ctx context.Context, id int64) (*model.Transfer, error) {
	t := &model.Transfer{}
	var resolvedAt sql.NullTime
	err := e.db.QueryRowContext(ctx,
		`SELECT t.id, t.source_department_id, t.destination_department_id, t.status, t.priority,
		        t.requested_by, t.requested_at, t.resolved_by, t.resolved_at,
		        sd.name, dd.name
		 FROM transfers t
		 JOIN departments sd ON sd.id = t.source_department_id
		 JOIN departments dd ON dd.id = t.destination_department_id
		 WHERE t.id = ?`, id,
	).Scan(&t.ID, &t.SourceID, &t.DestID, &t.Status, &t.Priority,
		&t.RequestedBy, &t.RequestedAt, &t.ResolvedBy, &resolvedAt,
		&t.SourceName, &t.DestName)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: transfer %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading transfer: %v", ErrStoreUnavailable, err)
	}
	if resolvedAt.Valid {
		resolved := resolvedAt.Time
		t.ResolvedAt = &resolved
	}

	rows, err := e.db.QueryContext(ctx,
		`SELECT l.item_id, l.quantity, i.name
		 FROM transfer_lines l
		 JOIN items i ON i.id = l.item_id
		 WHERE l.transfer_id = ?
		 ORDER BY l.line_no`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: reading transfer lines: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line model.TransferLine
		if err := rows.Scan(&line.ItemID, &line.Quantity, &line.ItemName); err != nil {
			return nil, fmt.Errorf("%w: scanning transfer line: %v", ErrStoreUnavailable, err)
		}
		t.Lines = append(t.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading transfer lines: %v", ErrStoreUnavailable, err)
	}
	return t, nil
}

// ListTransfers returns all transfers with their lines, newest first.
func (e *Engine) ListTransfers(ctx context.Context) ([]model.Transfer, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT t.id, t.source_department_id, t.destination_department_id, t.status, t.priority,
		        t.requested_by, t.requested_at, t.resolved_by, t.resolved_at,
		        sd.name, dd.name
		 FROM transfers t
		 JOIN departments sd ON sd.id = t.source_department_id
		 JOIN departments dd ON dd.id = t.destination_department_id
		 ORDER BY t.requested_at DESC, t.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listing transfers: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var transfers []model.Transfer
	index := make(map[int64]int)
	for rows.Next() {
		var t model.Transfer
		var resolvedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.SourceID, &t.DestID, &t.Status, &t.Priority,
			&t.RequestedBy, &t.RequestedAt, &t.ResolvedBy, &resolvedAt,
			&t.SourceName, &t.DestName); err != nil {
			return nil, fmt.Errorf("%w: scanning transfer: %v", ErrStoreUnavailable, err)
		}
		if resolvedAt.Valid {
			resolved := resolvedAt.Time
			t.ResolvedAt = &resolved
		}
		index[t.ID] = len(transfers)
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing transfers: %v", ErrStoreUnavailable, err)
	}

	lineRows, err := e.db.QueryContext(ctx,
		`SELECT l.transfer_id, l.item_id, l.quantity, i.name
		 FROM transfer_lines l
		 JOIN items i ON i.id = l.item_id
		 ORDER BY l.transfer_id, l.line_no`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listing transfer lines: %v", ErrStoreUnavailable, err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var transferID int64
		var line model.TransferLine
		if err := lineRows.Scan(&transferID, &line.ItemID, &line.Quantity, &line.ItemName); err != nil {
			return nil, fmt.Errorf("%w: scanning transfer line: %v", ErrStoreUnavailable, err)
		}
		if i, ok := index[transferID]; ok {
			transfers[i].Lines = append(transfers[i].Lines, line)
		}
	}
	return transfers, lineRows.Err()
}

// pendingReservations sums reserved quantities per source stock record across
// all pending transfers. Used by replay to reconstruct the reserved column.
func (e *Engine) pendingReservations(ctx context.Context) (map[stockKey]int, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT l.item_id, t.source_department_id, SUM(l.quantity)
		 FROM transfer_lines l
		 JOIN transfers t ON t.id = l.transfer_id
		 WHERE t.status = ?
		 GROUP BY l.item_id, t.source_department_id`,
		model.TransferPending,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pending reservations: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	reserved := make(map[stockKey]int)
	for rows.Next() {
		var key stockKey
		var sum int
		if err := rows.Scan(&key.ItemID, &key.DepartmentID, &sum); err != nil {
			return nil, fmt.Errorf("%w: scanning reservation: %v", ErrStoreUnavailable, err)
		}
		reserved[key] = sum
	}
	return reserved, rows.Err()
}
