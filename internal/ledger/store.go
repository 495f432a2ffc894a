package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/medinv/medinv/internal/model"
)

// DefaultLockWait bounds how long an operation waits for a stock record's
// critical section before failing with ErrTimeout.
const DefaultLockWait = 3 * time.Second

// Engine owns all stock mutations. Every operation takes the critical
// sections of the records it touches, then re-validates and applies its
// deltas together with the log append in a single SQL transaction.
type Engine struct {
	db    *sql.DB
	locks *lockTable
}

// New creates an engine over an opened database. A non-positive lockWait
// falls back to DefaultLockWait.
func New(db *sql.DB, lockWait time.Duration) *Engine {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Engine{
		db:    db,
		locks: newLockTable(lockWait),
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// GetStock returns the current record for (item, department). A missing row
// reads as a zero-quantity record; this never fails on absent stock.
func (e *Engine) GetStock(ctx context.Context, itemID, departmentID int64) (model.StockRecord, error) {
	if itemID <= 0 || departmentID <= 0 {
		return model.StockRecord{}, invalidInput("item and department are required")
	}
	return getStock(ctx, e.db, itemID, departmentID)
}

func getStock(ctx context.Context, q querier, itemID, departmentID int64) (model.StockRecord, error) {
	rec := model.StockRecord{ItemID: itemID, DepartmentID: departmentID}
	err := q.QueryRowContext(ctx,
		`SELECT quantity, reserved, min_threshold, updated_at
		 FROM stock WHERE item_id = ? AND department_id = ?`,
		itemID, departmentID,
	).Scan(&rec.Quantity, &rec.Reserved, &rec.MinThreshold, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("%w: reading stock: %v", ErrStoreUnavailable, err)
	}
	return rec, nil
}

// applyDelta performs the atomic read-modify-write for one stock record
// inside tx. It enforces quantity >= reserved >= 0; a result outside that
// range means a caller bug and fails with ErrInvariantViolation.
func applyDelta(ctx context.Context, tx *sql.Tx, itemID, departmentID int64, quantityDelta, reservedDelta int) (model.StockRecord, error) {
	rec, err := getStock(ctx, tx, itemID, departmentID)
	if err != nil {
		return rec, err
	}

	rec.Quantity += quantityDelta
	rec.Reserved += reservedDelta
	if rec.Quantity < 0 || rec.Reserved < 0 || rec.Reserved > rec.Quantity {
		return rec, fmt.Errorf("%w: stock (%d, %d) would become quantity=%d reserved=%d",
			ErrInvariantViolation, itemID, departmentID, rec.Quantity, rec.Reserved)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO stock (item_id, department_id, quantity, reserved, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (item_id, department_id) DO UPDATE
		 SET quantity = ?, reserved = ?, updated_at = CURRENT_TIMESTAMP`,
		itemID, departmentID, rec.Quantity, rec.Reserved, rec.Quantity, rec.Reserved,
	)
	if err != nil {
		return rec, fmt.Errorf("%w: writing stock: %v", ErrStoreUnavailable, err)
	}
	return rec, nil
}

// appendTransaction writes one ledger entry. The log is append-only; nothing
// in the engine ever updates or deletes these rows.
func appendTransaction(ctx context.Context, tx *sql.Tx, t model.Transaction) (int64, error) {
	var dedup any
	if t.DedupKey != "" {
		dedup = t.DedupKey
	}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (kind, item_id, department_id, quantity, actor_id, transfer_id, dedup_key, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Kind, t.ItemID, t.DepartmentID, t.Quantity, t.ActorID, t.TransferID, dedup, t.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: appending transaction: %v", ErrStoreUnavailable, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: reading transaction id: %v", ErrStoreUnavailable, err)
	}
	return id, nil
}

// SetThreshold sets the low-stock threshold for a stock record, creating a
// zero-quantity record if none exists yet.
func (e *Engine) SetThreshold(ctx context.Context, itemID, departmentID int64, threshold int) error {
	if itemID <= 0 || departmentID <= 0 {
		return invalidInput("item and department are required")
	}
	if threshold < 0 {
		return invalidInput("threshold must not be negative")
	}

	release, err := e.locks.acquire(ctx, stockKey{itemID, departmentID})
	if err != nil {
		return err
	}
	defer release()

	_, err = e.db.ExecContext(ctx,
		`INSERT INTO stock (item_id, department_id, min_threshold, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (item_id, department_id) DO UPDATE
		 SET min_threshold = ?, updated_at = CURRENT_TIMESTAMP`,
		itemID, departmentID, threshold, threshold,
	)
	if err != nil {
		return fmt.Errorf("%w: setting threshold: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// begin starts a SQL transaction, mapping failure to the retryable taxonomy.
func (e *Engine) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: beginning transaction: %v", ErrStoreUnavailable, err)
	}
	return tx, nil
}

func commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %v", ErrStoreUnavailable, err)
	}
	return nil
}
