package model

import "time"

// User represents an authentication user.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	DepartmentID *int64     `json:"department_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles, in descending order of privilege.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleUser     = "user"
	RoleReadOnly = "readonly"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:    4,
		RoleManager:  3,
		RoleUser:     2,
		RoleReadOnly: 1,
	}
	return levels[role] >= levels[minimum]
}

// ValidRole reports whether role is one of the known access levels.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleUser, RoleReadOnly:
		return true
	}
	return false
}
