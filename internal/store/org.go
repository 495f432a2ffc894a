package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/medinv/medinv/internal/model"
)

// CreateHospital creates a new hospital.
func CreateHospital(ctx context.Context, db *sql.DB, name, location string) (*model.Hospital, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO hospitals (name, location) VALUES (?, ?)`,
		name, location,
	)
	if err != nil {
		return nil, fmt.Errorf("creating hospital: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting hospital id: %w", err)
	}

	return GetHospital(ctx, db, id)
}

// GetHospital returns a hospital by ID.
func GetHospital(ctx context.Context, db *sql.DB, id int64) (*model.Hospital, error) {
	h := &model.Hospital{}
	var location sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, location, created_at, deleted_at FROM hospitals WHERE id = ?`, id,
	).Scan(&h.ID, &h.Name, &location, &h.CreatedAt, &h.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting hospital: %w", err)
	}
	h.Location = location.String
	return h, nil
}

// UpdateHospital updates a hospital's metadata.
func UpdateHospital(ctx context.Context, db *sql.DB, id int64, name, location string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE hospitals SET name = ?, location = ? WHERE id = ? AND deleted_at IS NULL`,
		name, location, id,
	)
	if err != nil {
		return fmt.Errorf("updating hospital: %w", err)
	}
	return nil
}

// DeleteHospital soft-deletes a hospital.
func DeleteHospital(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE hospitals SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting hospital: %w", err)
	}
	return nil
}

// CreateDepartment creates a department, or a subdepartment when parentID is
// non-nil. Subdepartments cannot be nested further.
func CreateDepartment(ctx context.Context, db *sql.DB, hospitalID int64, parentID *int64, name string, staffCount int) (*model.Department, error) {
	if parentID != nil {
		var parentParent sql.NullInt64
		err := db.QueryRowContext(ctx,
			`SELECT parent_id FROM departments WHERE id = ? AND deleted_at IS NULL`, *parentID,
		).Scan(&parentParent)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("parent department not found")
		}
		if err != nil {
			return nil, fmt.Errorf("checking parent department: %w", err)
		}
		if parentParent.Valid {
			return nil, fmt.Errorf("subdepartments cannot have subdepartments")
		}
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO departments (hospital_id, parent_id, name, staff_count) VALUES (?, ?, ?, ?)`,
		hospitalID, parentID, name, staffCount,
	)
	if err != nil {
		return nil, fmt.Errorf("creating department: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting department id: %w", err)
	}

	return GetDepartment(ctx, db, id)
}

// GetDepartment returns a department by ID.
func GetDepartment(ctx context.Context, db *sql.DB, id int64) (*model.Department, error) {
	d := &model.Department{}
	err := db.QueryRowContext(ctx,
		`SELECT id, hospital_id, parent_id, name, staff_count, created_at, deleted_at
		 FROM departments WHERE id = ?`, id,
	).Scan(&d.ID, &d.HospitalID, &d.ParentID, &d.Name, &d.StaffCount, &d.CreatedAt, &d.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting department: %w", err)
	}
	return d, nil
}

// ListDepartments returns all non-deleted departments, optionally scoped to
// one hospital.
func ListDepartments(ctx context.Context, db *sql.DB, hospitalID int64) ([]model.Department, error) {
	var rows *sql.Rows
	var err error

	if hospitalID > 0 {
		rows, err = db.QueryContext(ctx,
			`SELECT id, hospital_id, parent_id, name, staff_count, created_at, deleted_at
			 FROM departments WHERE deleted_at IS NULL AND hospital_id = ? ORDER BY name`, hospitalID,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT id, hospital_id, parent_id, name, staff_count, created_at, deleted_at
			 FROM departments WHERE deleted_at IS NULL ORDER BY name`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.HospitalID, &d.ParentID, &d.Name, &d.StaffCount, &d.CreatedAt, &d.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// UpdateDepartment updates a department's name and staff count.
func UpdateDepartment(ctx context.Context, db *sql.DB, id int64, name string, staffCount int) error {
	_, err := db.ExecContext(ctx,
		`UPDATE departments SET name = ?, staff_count = ? WHERE id = ? AND deleted_at IS NULL`,
		name, staffCount, id,
	)
	if err != nil {
		return fmt.Errorf("updating department: %w", err)
	}
	return nil
}

// DeleteDepartment soft-deletes a department.
func DeleteDepartment(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE departments SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting department: %w", err)
	}
	return nil
}

// HospitalTree returns every hospital with its departments and
// subdepartments nested, as plain read-only data.
func HospitalTree(ctx context.Context, db *sql.DB) ([]model.HospitalNode, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, location, created_at, deleted_at
		 FROM hospitals WHERE deleted_at IS NULL ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing hospitals: %w", err)
	}
	defer rows.Close()

	var tree []model.HospitalNode
	hospitalIndex := make(map[int64]int)
	for rows.Next() {
		var h model.Hospital
		var location sql.NullString
		if err := rows.Scan(&h.ID, &h.Name, &location, &h.CreatedAt, &h.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning hospital: %w", err)
		}
		h.Location = location.String
		hospitalIndex[h.ID] = len(tree)
		tree = append(tree, model.HospitalNode{Hospital: h})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	departments, err := ListDepartments(ctx, db, 0)
	if err != nil {
		return nil, err
	}

	// Top-level departments first, then attach subdepartments.
	nodeIndex := make(map[int64][2]int)
	for _, d := range departments {
		if d.ParentID != nil {
			continue
		}
		hi, ok := hospitalIndex[d.HospitalID]
		if !ok {
			continue
		}
		nodeIndex[d.ID] = [2]int{hi, len(tree[hi].Departments)}
		tree[hi].Departments = append(tree[hi].Departments, model.DepartmentNode{Department: d})
	}
	for _, d := range departments {
		if d.ParentID == nil {
			continue
		}
		pos, ok := nodeIndex[*d.ParentID]
		if !ok {
			continue
		}
		node := &tree[pos[0]].Departments[pos[1]]
		node.Subdepartments = append(node.Subdepartments, d)
	}

	return tree, nil
}
