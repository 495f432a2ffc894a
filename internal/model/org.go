package model

import "time"

// Hospital is the top of the organizational hierarchy.
type Hospital struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Location  string     `json:"location,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Department belongs to a hospital. A department with a non-nil ParentID is a
// subdepartment; nesting is limited to one level.
type Department struct {
	ID         int64      `json:"id"`
	HospitalID int64      `json:"hospital_id"`
	ParentID   *int64     `json:"parent_id,omitempty"`
	Name       string     `json:"name"`
	StaffCount int        `json:"staff_count"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// DepartmentNode is a department with its subdepartments.
type DepartmentNode struct {
	Department
	Subdepartments []Department `json:"subdepartments,omitempty"`
}

// HospitalNode is a hospital with its full department tree.
type HospitalNode struct {
	Hospital
	Departments []DepartmentNode `json:"departments,omitempty"`
}
