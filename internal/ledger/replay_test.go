package ledger

import (
	"context"
	"testing"

	"github.com/medinv/medinv/internal/model"
)

// seedHistory drives a representative mix of movements: book-ins, a book-out,
// an approved transfer and a still-pending one.
func seedHistory(t *testing.T, engine *Engine, fx fixtures) {
	t.Helper()
	ctx := context.Background()

	mustBook := func(tx *model.Transaction, err error) {
		if err != nil {
			t.Fatalf("seeding history: %v", err)
		}
	}
	mustBook(engine.BookIn(ctx, fx.ItemID, fx.WardID, 100, nil, ""))
	mustBook(engine.BookIn(ctx, fx.Item2ID, fx.WardID, 30, nil, ""))
	mustBook(engine.BookOut(ctx, fx.ItemID, fx.WardID, 20, nil, ""))

	approved, err := engine.RequestTransfer(ctx, fx.WardID, fx.PharmaID,
		[]model.TransferLine{{ItemID: fx.ItemID, Quantity: 25}}, "", nil)
	if err != nil {
		t.Fatalf("seeding history: %v", err)
	}
	if _, err := engine.ApproveTransfer(ctx, approved.ID, nil); err != nil {
		t.Fatalf("seeding history: %v", err)
	}

	if _, err := engine.RequestTransfer(ctx, fx.WardID, fx.PharmaID,
		[]model.TransferLine{{ItemID: fx.Item2ID, Quantity: 10}}, "", nil); err != nil {
		t.Fatalf("seeding history: %v", err)
	}
}

func TestRebuildReproducesStock(t *testing.T) {
	engine, database, fx := newTestEngine(t)
	ctx := context.Background()

	seedHistory(t, engine, fx)

	before, err := engine.ListStock(ctx)
	if err != nil {
		t.Fatalf("ListStock: %v", err)
	}

	// Corrupt the stock table behind the engine's back.
	if _, err := database.Exec(`UPDATE stock SET quantity = quantity + 7, reserved = 0`); err != nil {
		t.Fatalf("corrupting stock: %v", err)
	}

	if err := engine.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	after, err := engine.ListStock(ctx)
	if err != nil {
		t.Fatalf("ListStock: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("expected %d records after rebuild, got %d", len(before), len(after))
	}
	for i := range before {
		b, a := before[i], after[i]
		if a.ItemID != b.ItemID || a.DepartmentID != b.DepartmentID ||
			a.Quantity != b.Quantity || a.Reserved != b.Reserved {
			t.Errorf("record (%d, %d): expected %d/%d, got %d/%d",
				b.ItemID, b.DepartmentID, b.Quantity, b.Reserved, a.Quantity, a.Reserved)
		}
	}
}

func TestRebuildReconstructsReservations(t *testing.T) {
	engine, database, fx := newTestEngine(t)
	ctx := context.Background()

	seedHistory(t, engine, fx)

	if _, err := database.Exec(`UPDATE stock SET reserved = 0`); err != nil {
		t.Fatalf("clearing reservations: %v", err)
	}
	if err := engine.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// The pending transfer's reservation comes back from its lines.
	rec, err := engine.GetStock(ctx, fx.Item2ID, fx.WardID)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if rec.Reserved != 10 {
		t.Errorf("expected reserved 10 after rebuild, got %d", rec.Reserved)
	}
}

func TestReconcileDetectsDrift(t *testing.T) {
	engine, database, fx := newTestEngine(t)
	ctx := context.Background()

	seedHistory(t, engine, fx)

	mismatches, err := engine.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if mismatches != 0 {
		t.Fatalf("expected clean reconciliation, got %d mismatches", mismatches)
	}

	if _, err := database.Exec(
		`UPDATE stock SET quantity = quantity + 1 WHERE item_id = ? AND department_id = ?`,
		fx.ItemID, fx.WardID,
	); err != nil {
		t.Fatalf("corrupting stock: %v", err)
	}

	mismatches, err = engine.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if mismatches != 1 {
		t.Errorf("expected 1 mismatch, got %d", mismatches)
	}
}
