package store

import (
	"context"
	"testing"

	"github.com/medinv/medinv/internal/db"
	"github.com/medinv/medinv/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "alice", "hash", model.RoleManager, nil)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != model.RoleManager {
		t.Errorf("expected role manager, got %q", user.Role)
	}

	got, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Errorf("expected to fetch alice back, got %+v", got)
	}

	missing, err := GetUserByUsername(ctx, database, "nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown username, got %+v", missing)
	}
}

func TestUserDepartmentAssignment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hospital, _ := CreateHospital(ctx, database, "General", "")
	ward, _ := CreateDepartment(ctx, database, hospital.ID, nil, "Ward A", 1)

	user, err := CreateUser(ctx, database, "bob", "hash", model.RoleUser, &ward.ID)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.DepartmentID == nil || *user.DepartmentID != ward.ID {
		t.Errorf("expected department %d, got %+v", ward.ID, user.DepartmentID)
	}

	if err := UpdateUser(ctx, database, user.ID, model.RoleReadOnly, nil); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	got, _ := GetUser(ctx, database, user.ID)
	if got.Role != model.RoleReadOnly || got.DepartmentID != nil {
		t.Errorf("expected readonly with no department, got %+v", got)
	}
}

func TestCountUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	count, err := CountUsers(ctx, database)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 users, got %d", count)
	}

	CreateUser(ctx, database, "alice", "hash", model.RoleAdmin, nil)
	CreateUser(ctx, database, "bob", "hash", model.RoleUser, nil)

	count, _ = CountUsers(ctx, database)
	if count != 2 {
		t.Errorf("expected 2 users, got %d", count)
	}
}

func TestDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "leaving", "hash", model.RoleUser, nil)
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	got, _ := GetUserByUsername(ctx, database, "leaving")
	if got != nil {
		t.Errorf("expected deleted user to be gone from lookup, got %+v", got)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "old-hash", model.RoleUser, nil)
	if err := UpdateUserPassword(ctx, database, user.ID, "new-hash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "new-hash" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
}
