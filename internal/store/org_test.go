package store

import (
	"context"
	"testing"

	"github.com/medinv/medinv/internal/db"
)

func TestCreateHospitalAndDepartments(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hospital, err := CreateHospital(ctx, database, "General Hospital", "Main St 1")
	if err != nil {
		t.Fatalf("CreateHospital: %v", err)
	}

	ward, err := CreateDepartment(ctx, database, hospital.ID, nil, "Ward A", 12)
	if err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	if ward.HospitalID != hospital.ID || ward.ParentID != nil {
		t.Errorf("unexpected department %+v", ward)
	}

	sub, err := CreateDepartment(ctx, database, hospital.ID, &ward.ID, "Ward A ICU", 4)
	if err != nil {
		t.Fatalf("creating subdepartment: %v", err)
	}
	if sub.ParentID == nil || *sub.ParentID != ward.ID {
		t.Errorf("expected parent %d, got %+v", ward.ID, sub.ParentID)
	}
}

func TestSubdepartmentsCannotNest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hospital, _ := CreateHospital(ctx, database, "General", "")
	ward, _ := CreateDepartment(ctx, database, hospital.ID, nil, "Ward", 1)
	sub, _ := CreateDepartment(ctx, database, hospital.ID, &ward.ID, "Sub", 1)

	if _, err := CreateDepartment(ctx, database, hospital.ID, &sub.ID, "Subsub", 1); err == nil {
		t.Error("expected error nesting under a subdepartment")
	}

	missing := int64(999)
	if _, err := CreateDepartment(ctx, database, hospital.ID, &missing, "Orphan", 1); err == nil {
		t.Error("expected error for missing parent")
	}
}

func TestListDepartmentsScopedToHospital(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	h1, _ := CreateHospital(ctx, database, "First", "")
	h2, _ := CreateHospital(ctx, database, "Second", "")
	CreateDepartment(ctx, database, h1.ID, nil, "Ward A", 1)
	CreateDepartment(ctx, database, h1.ID, nil, "Ward B", 1)
	CreateDepartment(ctx, database, h2.ID, nil, "Ward C", 1)

	all, _ := ListDepartments(ctx, database, 0)
	if len(all) != 3 {
		t.Errorf("expected 3 departments, got %d", len(all))
	}
	scoped, _ := ListDepartments(ctx, database, h1.ID)
	if len(scoped) != 2 {
		t.Errorf("expected 2 departments for first hospital, got %d", len(scoped))
	}
}

func TestHospitalTree(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hospital, _ := CreateHospital(ctx, database, "General", "")
	ward, _ := CreateDepartment(ctx, database, hospital.ID, nil, "Ward A", 10)
	CreateDepartment(ctx, database, hospital.ID, &ward.ID, "Ward A ICU", 3)
	CreateDepartment(ctx, database, hospital.ID, nil, "Pharmacy", 4)

	deleted, _ := CreateDepartment(ctx, database, hospital.ID, nil, "Closed", 0)
	DeleteDepartment(ctx, database, deleted.ID)

	tree, err := HospitalTree(ctx, database)
	if err != nil {
		t.Fatalf("HospitalTree: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("expected 1 hospital, got %d", len(tree))
	}
	if len(tree[0].Departments) != 2 {
		t.Fatalf("expected 2 top-level departments, got %d", len(tree[0].Departments))
	}

	foundWard := false
	for _, node := range tree[0].Departments {
		if node.Name == "Ward A" {
			foundWard = true
			if len(node.Subdepartments) != 1 || node.Subdepartments[0].Name != "Ward A ICU" {
				t.Errorf("expected Ward A ICU nested under Ward A, got %+v", node.Subdepartments)
			}
		}
	}
	if !foundWard {
		t.Error("expected Ward A in the tree")
	}
}

func TestSoftDeleteHospital(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hospital, _ := CreateHospital(ctx, database, "Closing", "")
	DeleteHospital(ctx, database, hospital.ID)

	tree, _ := HospitalTree(ctx, database)
	if len(tree) != 0 {
		t.Errorf("expected empty tree after delete, got %d hospitals", len(tree))
	}

	got, _ := GetHospital(ctx, database, hospital.ID)
	if got == nil || got.DeletedAt == nil {
		t.Error("expected soft-deleted hospital to remain fetchable with deleted_at set")
	}
}
