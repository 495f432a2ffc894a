package alerts

import (
	"testing"

	"github.com/medinv/medinv/internal/model"
)

func rec(itemID, deptID int64, quantity, reserved, threshold int) model.StockRecord {
	return model.StockRecord{
		ItemID:       itemID,
		DepartmentID: deptID,
		Quantity:     quantity,
		Reserved:     reserved,
		MinThreshold: threshold,
	}
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		name     string
		record   model.StockRecord
		expected string
	}{
		{"well stocked", rec(1, 1, 200, 0, 100), model.StockInStock},
		{"at threshold", rec(1, 1, 100, 0, 100), model.StockInStock},
		{"just below threshold", rec(1, 1, 99, 0, 100), model.StockLow},
		{"low after consumption", rec(1, 1, 45, 10, 100), model.StockLow},
		{"at critical boundary", rec(1, 1, 30, 0, 100), model.StockLow},
		{"below critical boundary", rec(1, 1, 29, 0, 100), model.StockCritical},
		{"fully reserved", rec(1, 1, 50, 50, 100), model.StockOutOfStock},
		{"empty", rec(1, 1, 0, 0, 100), model.StockOutOfStock},
		{"empty without threshold", rec(1, 1, 0, 0, 0), model.StockOutOfStock},
		{"stocked without threshold", rec(1, 1, 1, 0, 0), model.StockInStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Status(tc.record, DefaultCriticalFraction); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestStatusReflectsReservations(t *testing.T) {
	// 45 on hand against a threshold of 100 reads low; booking out 10 keeps
	// it low; reserving the rest drives it out of stock.
	r := rec(1, 1, 45, 0, 100)
	if got := Status(r, DefaultCriticalFraction); got != model.StockLow {
		t.Fatalf("expected low, got %q", got)
	}

	r.Quantity -= 10
	if got := Status(r, DefaultCriticalFraction); got != model.StockLow {
		t.Errorf("expected low after book-out, got %q", got)
	}

	r.Reserved = r.Quantity
	if got := Status(r, DefaultCriticalFraction); got != model.StockOutOfStock {
		t.Errorf("expected out of stock when fully reserved, got %q", got)
	}
}

func TestStatusInvalidFractionFallsBack(t *testing.T) {
	r := rec(1, 1, 29, 0, 100)
	if got := Status(r, 0); got != model.StockCritical {
		t.Errorf("expected default fraction to apply, got %q", got)
	}
	if got := Status(r, 1.5); got != model.StockCritical {
		t.Errorf("expected default fraction to apply, got %q", got)
	}
}

func TestListOrdersBySeverity(t *testing.T) {
	records := []model.StockRecord{
		rec(1, 1, 200, 0, 100), // in stock, excluded
		rec(2, 1, 80, 0, 100),  // low
		rec(3, 1, 10, 0, 100),  // critical
		rec(4, 1, 0, 0, 100),   // out of stock
		rec(5, 1, 5, 0, 100),   // critical, more available than item 3
	}

	alerts := List(records, DefaultCriticalFraction, Filter{})
	if len(alerts) != 4 {
		t.Fatalf("expected 4 alerts, got %d", len(alerts))
	}

	wantOrder := []int64{4, 5, 3, 2}
	for i, want := range wantOrder {
		if alerts[i].ItemID != want {
			t.Errorf("position %d: expected item %d, got %d", i, want, alerts[i].ItemID)
		}
	}
	if alerts[0].Status != model.StockOutOfStock {
		t.Errorf("expected out_of_stock first, got %q", alerts[0].Status)
	}
	if alerts[3].Status != model.StockLow {
		t.Errorf("expected low last, got %q", alerts[3].Status)
	}
}

func TestListFilters(t *testing.T) {
	records := []model.StockRecord{
		{ItemID: 1, DepartmentID: 1, Quantity: 5, MinThreshold: 100, DepartmentName: "Ward A", ItemCategory: "fluids"},
		{ItemID: 2, DepartmentID: 2, Quantity: 5, MinThreshold: 100, DepartmentName: "Pharmacy", ItemCategory: "dressing"},
	}

	byDept := List(records, DefaultCriticalFraction, Filter{Department: "ward a"})
	if len(byDept) != 1 || byDept[0].ItemID != 1 {
		t.Errorf("expected only the Ward A record, got %+v", byDept)
	}

	byCategory := List(records, DefaultCriticalFraction, Filter{Category: "Dressing"})
	if len(byCategory) != 1 || byCategory[0].ItemID != 2 {
		t.Errorf("expected only the dressing record, got %+v", byCategory)
	}

	none := List(records, DefaultCriticalFraction, Filter{Department: "Ward A", Category: "dressing"})
	if len(none) != 0 {
		t.Errorf("expected no records matching both filters, got %d", len(none))
	}
}

func TestListEmptyResultIsNotNil(t *testing.T) {
	alerts := List(nil, DefaultCriticalFraction, Filter{})
	if alerts == nil {
		t.Error("expected empty slice, got nil")
	}
}
