package models

import "time"

// UserRole is the tagged role carried by every account.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

// Capability names an action a role may perform.
type Capability string

const (
	CapManageCatalog Capability = "manage_catalog"
	CapManageMembers Capability = "manage_members"
	CapManageLoans   Capability = "manage_loans"
	CapViewReports   Capability = "view_reports"
)

var roleCapabilities = map[UserRole][]Capability{
	RoleAdmin:   {CapManageCatalog, CapManageMembers, CapManageLoans, CapViewReports},
	RoleStudent: nil,
}

// Can reports whether the role grants cap.
func (r UserRole) Can(cap Capability) bool {
	for _, c := range roleCapabilities[r] {
		if c == cap {
			return true
		}
	}
	return false
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// User represents an application account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Info is the public view of the account.
func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}
