package domain

import "time"

// AdminRole scopes what an authenticated back-office account may do.
type AdminRole string

const (
	// AdminRoleSuperAdmin grants full write access, including account management.
	AdminRoleSuperAdmin AdminRole = "SUPER_ADMIN"
	// AdminRoleAdmin grants read-mostly access to inquiries and dashboards.
	AdminRoleAdmin AdminRole = "ADMIN"
)

// AdminRoles lists every accepted admin role.
var AdminRoles = []AdminRole{AdminRoleSuperAdmin, AdminRoleAdmin}

// AdminUser is a back-office account. Email is unique, immutable after
// creation, and stored lower-case. PasswordHash is a bcrypt hash and never
// leaves the service layer.
type AdminUser struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         AdminRole
	Active       bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins the account's first and last name for display.
func (u AdminUser) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
