package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/medinv/medinv/internal/model"
)

// BookIn adds quantity to a department's stock and records a completed
// book-in transaction. If dedupKey is non-empty and a transaction with that
// key already exists, the original transaction is returned and nothing is
// applied again.
func (e *Engine) BookIn(ctx context.Context, itemID, departmentID int64, quantity int, actor *int64, dedupKey string) (*model.Transaction, error) {
	return e.book(ctx, model.TxBookIn, itemID, departmentID, quantity, actor, dedupKey)
}

// BookOut removes quantity from a department's available stock. It fails
// with an InsufficientStockError when quantity exceeds what is available
// (on-hand minus reserved) at the time the record's critical section is
// held, leaving the record unchanged.
func (e *Engine) BookOut(ctx context.Context, itemID, departmentID int64, quantity int, actor *int64, dedupKey string) (*model.Transaction, error) {
	return e.book(ctx, model.TxBookOut, itemID, departmentID, quantity, actor, dedupKey)
}

func (e *Engine) book(ctx context.Context, kind string, itemID, departmentID int64, quantity int, actor *int64, dedupKey string) (*model.Transaction, error) {
	if itemID <= 0 || departmentID <= 0 {
		return nil, invalidInput("item and department are required")
	}
	if quantity <= 0 {
		return nil, invalidInput("quantity must be positive")
	}

	release, err := e.locks.acquire(ctx, stockKey{itemID, departmentID})
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := e.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Replay check must happen inside the critical section so a retried
	// request cannot race its original.
	if dedupKey != "" {
		original, err := getTransactionByDedupKey(ctx, tx, dedupKey)
		if err != nil {
			return nil, err
		}
		if original != nil {
			return original, nil
		}
	}

	rec, err := getStock(ctx, tx, itemID, departmentID)
	if err != nil {
		return nil, err
	}

	delta := quantity
	if kind == model.TxBookOut {
		if quantity > rec.Available() {
			return nil, &InsufficientStockError{
				ItemID:       itemID,
				DepartmentID: departmentID,
				Requested:    quantity,
				Available:    rec.Available(),
			}
		}
		delta = -quantity
	}

	if _, err := applyDelta(ctx, tx, itemID, departmentID, delta, 0); err != nil {
		return nil, err
	}

	entry := model.Transaction{
		Kind:         kind,
		ItemID:       itemID,
		DepartmentID: departmentID,
		Quantity:     quantity,
		ActorID:      actor,
		DedupKey:     dedupKey,
		Status:       model.TxCompleted,
	}
	id, err := appendTransaction(ctx, tx, entry)
	if err != nil {
		return nil, err
	}

	result, err := getTransaction(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := commit(tx); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTransaction returns one ledger entry by ID.
func (e *Engine) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	t, err := getTransaction(ctx, e.db, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: transaction %d", ErrNotFound, id)
	}
	return t, nil
}

func getTransaction(ctx context.Context, q querier, id int64) (*model.Transaction, error) {
	return scanTransactionRow(q.QueryRowContext(ctx,
		`SELECT id, kind, item_id, department_id, quantity, actor_id, transfer_id, dedup_key, status, created_at
		 FROM transactions WHERE id = ?`, id,
	))
}

func getTransactionByDedupKey(ctx context.Context, q querier, key string) (*model.Transaction, error) {
	return scanTransactionRow(q.QueryRowContext(ctx,
		`SELECT id, kind, item_id, department_id, quantity, actor_id, transfer_id, dedup_key, status, created_at
		 FROM transactions WHERE dedup_key = ?`, key,
	))
}

func scanTransactionRow(row *sql.Row) (*model.Transaction, error) {
	t := &model.Transaction{}
	var dedup sql.NullString
	err := row.Scan(&t.ID, &t.Kind, &t.ItemID, &t.DepartmentID, &t.Quantity,
		&t.ActorID, &t.TransferID, &dedup, &t.Status, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading transaction: %v", ErrStoreUnavailable, err)
	}
	t.DedupKey = dedup.String
	return t, nil
}
