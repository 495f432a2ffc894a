package ledger

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/medinv/medinv/internal/db"
	"github.com/medinv/medinv/internal/store"
)

// fixtures is the minimal org and catalog setup ledger tests run against.
type fixtures struct {
	ItemID   int64
	Item2ID  int64
	WardID   int64
	PharmaID int64
}

func newTestEngine(t *testing.T) (*Engine, *sql.DB, fixtures) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	hospital, err := store.CreateHospital(ctx, database, "General Hospital", "Main St 1")
	if err != nil {
		t.Fatalf("CreateHospital: %v", err)
	}
	ward, err := store.CreateDepartment(ctx, database, hospital.ID, nil, "Ward A", 12)
	if err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	pharmacy, err := store.CreateDepartment(ctx, database, hospital.ID, nil, "Pharmacy", 4)
	if err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	item, err := store.CreateItem(ctx, database, "Saline 0.9%", "fluids", "bag")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	item2, err := store.CreateItem(ctx, database, "Gauze Pads", "dressing", "box")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	return New(database, time.Second), database, fixtures{
		ItemID:   item.ID,
		Item2ID:  item2.ID,
		WardID:   ward.ID,
		PharmaID: pharmacy.ID,
	}
}
